// Package normalize recovers a structured LectureAnalysis from whatever text
// the AI service returns. Models wrap JSON in code fences, append prose,
// truncate output mid-object or drift from the requested schema; this package
// tries progressively more forgiving strategies and only gives up when not a
// single field can be salvaged.
package normalize

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"studydesk/internal/domain"
)

// ErrEmptyAnalysis is returned when even the field-level fallback could not
// recover any usable content from the response.
var ErrEmptyAnalysis = errors.New("no analysis content could be recovered from response")

const (
	maxQuizOptions         = 4
	defaultExplanation     = "No explanation provided."
	placeholderOptionTrue  = "True"
	placeholderOptionFalse = "False"
)

// rawQuiz tolerates the malformed quiz shapes models produce: the answer
// index arrives as a number, a float, a quoted string or not at all.
type rawQuiz struct {
	Question           string          `json:"question"`
	Options            []string        `json:"options"`
	CorrectAnswerIndex json.RawMessage `json:"correctAnswerIndex"`
	Explanation        string          `json:"explanation"`
}

type rawAnalysis struct {
	Title      string             `json:"title"`
	Summary    string             `json:"summary"`
	KeyPoints  []string           `json:"keyPoints"`
	Flashcards []domain.Flashcard `json:"flashcards"`
	Quizzes    []rawQuiz          `json:"quizzes"`
}

// Normalize produces a best-effort LectureAnalysis from raw model output.
// Strategies, in order of preference: strict parse of the extracted object,
// strict parse after structural repair, then independent per-field regex
// extraction. It never panics on malformed input.
func Normalize(raw string) (*domain.LectureAnalysis, error) {
	candidate := ExtractObject(raw)

	if candidate != "" {
		var parsed rawAnalysis
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			if analysis, err := finish(&parsed); err == nil {
				return analysis, nil
			}
		} else {
			repaired := Repair(candidate)
			var reparsed rawAnalysis
			if err := json.Unmarshal([]byte(repaired), &reparsed); err == nil {
				if analysis, err := finish(&reparsed); err == nil {
					return analysis, nil
				}
			}
		}
	}

	// Last resort: pull fields out independently so a single broken section
	// does not throw away the rest of the guide.
	fallback := extractFields(stripFences(raw))
	return finish(fallback)
}

func finish(parsed *rawAnalysis) (*domain.LectureAnalysis, error) {
	analysis := sanitize(parsed)
	if analysis.IsEmpty() && analysis.Title == "" {
		return nil, ErrEmptyAnalysis
	}
	return analysis, nil
}

func stripFences(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ExtractObject strips fenced code markers and slices the text from the first
// '{' to the last '}'. When no closing brace follows, the tail from the first
// '{' is returned so that Repair can append the missing closers.
func ExtractObject(raw string) string {
	s := stripFences(raw)

	first := strings.Index(s, "{")
	if first == -1 {
		return ""
	}
	last := strings.LastIndex(s, "}")
	if last > first {
		return s[first : last+1]
	}
	return s[first:]
}

// Repair appends the closing braces and brackets a truncated JSON document is
// missing. It scans outside of quoted strings (respecting escapes), tracking a
// stack of open '{' and '[', after first dropping a trailing backslash or
// trailing comma that would make the appended closers useless.
func Repair(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	if strings.HasSuffix(s, "\\") {
		s = s[:len(s)-1]
	}
	s = strings.TrimRight(s, " \t\r\n")
	if strings.HasSuffix(s, ",") {
		s = s[:len(s)-1]
	}

	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

// sanitize coerces a loosely parsed analysis into the shape the domain
// guarantees: trimmed strings, a valid clamped answer index, 2-4 options per
// quiz, placeholder explanations. Quizzes that still cannot be made valid are
// excluded rather than failing the whole analysis.
func sanitize(parsed *rawAnalysis) *domain.LectureAnalysis {
	analysis := &domain.LectureAnalysis{
		Title:   strings.TrimSpace(parsed.Title),
		Summary: strings.TrimSpace(parsed.Summary),
	}

	for _, kp := range parsed.KeyPoints {
		kp = strings.TrimSpace(kp)
		if kp != "" {
			analysis.KeyPoints = append(analysis.KeyPoints, kp)
		}
	}

	for _, fc := range parsed.Flashcards {
		fc.Front = strings.TrimSpace(fc.Front)
		fc.Back = strings.TrimSpace(fc.Back)
		if fc.Front == "" && fc.Back == "" {
			continue
		}
		analysis.Flashcards = append(analysis.Flashcards, fc)
	}

	for _, rq := range parsed.Quizzes {
		q := sanitizeQuiz(rq)
		if q == nil {
			continue
		}
		analysis.Quizzes = append(analysis.Quizzes, *q)
	}

	return analysis
}

func sanitizeQuiz(rq rawQuiz) *domain.QuizQuestion {
	question := strings.TrimSpace(rq.Question)
	if question == "" {
		return nil
	}

	options := make([]string, 0, len(rq.Options))
	for _, opt := range rq.Options {
		opt = strings.TrimSpace(opt)
		if opt != "" {
			options = append(options, opt)
		}
	}
	if len(options) == 0 {
		// A missing option list still yields a usable card.
		options = []string{placeholderOptionTrue, placeholderOptionFalse}
	}
	if len(options) < 2 {
		// One supplied option is ambiguous; drop the quiz entirely.
		return nil
	}
	if len(options) > maxQuizOptions {
		options = options[:maxQuizOptions]
	}

	explanation := strings.TrimSpace(rq.Explanation)
	if explanation == "" {
		explanation = defaultExplanation
	}

	return &domain.QuizQuestion{
		Question:           question,
		Options:            options,
		CorrectAnswerIndex: coerceIndex(rq.CorrectAnswerIndex, len(options)),
		Explanation:        explanation,
	}
}

// coerceIndex turns whatever the model put into correctAnswerIndex into an
// integer clamped to [0, optionCount-1]. Non-numeric input maps to 0.
func coerceIndex(raw json.RawMessage, optionCount int) int {
	idx := 0
	if len(raw) > 0 {
		text := strings.TrimSpace(string(raw))
		text = strings.Trim(text, `"`)
		if n, err := strconv.ParseFloat(text, 64); err == nil {
			idx = int(n)
		}
	}
	if idx < 0 {
		idx = 0
	}
	if idx > optionCount-1 {
		idx = optionCount - 1
	}
	return idx
}
