package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"studydesk/internal/domain"
)

// Field-level extraction for responses too broken for even the repaired parse.
// Each field is pulled out independently so a partial guide beats no guide.

var (
	titleRe   = regexp.MustCompile(`"title"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	summaryRe = regexp.MustCompile(`(?s)"summary"\s*:\s*"((?:[^"\\]|\\.)*)"`)

	keyPointsRe = regexp.MustCompile(`(?s)"keyPoints"\s*:\s*\[(.*?)\]`)
	quotedRe    = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)

	flashcardRe = regexp.MustCompile(`(?s)"front"\s*:\s*"((?:[^"\\]|\\.)*)"\s*,\s*"back"\s*:\s*"((?:[^"\\]|\\.)*)"`)

	// Quiz objects are matched field by field in the order the prompt asks
	// for them; index and explanation stay optional.
	quizRe = regexp.MustCompile(`(?s)"question"\s*:\s*"((?:[^"\\]|\\.)*)"\s*,\s*"options"\s*:\s*\[(.*?)\](?:\s*,\s*"correctAnswerIndex"\s*:\s*"?(-?\d+(?:\.\d+)?)"?)?(?:\s*,\s*"explanation"\s*:\s*"((?:[^"\\]|\\.)*)")?`)
)

func extractFields(text string) *rawAnalysis {
	parsed := &rawAnalysis{}

	if m := titleRe.FindStringSubmatch(text); m != nil {
		parsed.Title = unescape(m[1])
	}
	if m := summaryRe.FindStringSubmatch(text); m != nil {
		parsed.Summary = unescape(m[1])
	}

	if m := keyPointsRe.FindStringSubmatch(text); m != nil {
		for _, item := range quotedRe.FindAllStringSubmatch(m[1], -1) {
			parsed.KeyPoints = append(parsed.KeyPoints, unescape(item[1]))
		}
	}

	for _, m := range flashcardRe.FindAllStringSubmatch(text, -1) {
		parsed.Flashcards = append(parsed.Flashcards, domain.Flashcard{
			Front: unescape(m[1]),
			Back:  unescape(m[2]),
		})
	}

	for _, m := range quizRe.FindAllStringSubmatch(text, -1) {
		rq := rawQuiz{
			Question:    unescape(m[1]),
			Explanation: unescape(m[4]),
		}
		for _, opt := range quotedRe.FindAllStringSubmatch(m[2], -1) {
			rq.Options = append(rq.Options, unescape(opt[1]))
		}
		if m[3] != "" {
			rq.CorrectAnswerIndex = json.RawMessage(m[3])
		}
		parsed.Quizzes = append(parsed.Quizzes, rq)
	}

	return parsed
}

// unescape resolves JSON string escapes; on malformed escapes the raw text is
// kept rather than dropped.
func unescape(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}
