package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studydesk/internal/config"
	"studydesk/internal/domain"
	"studydesk/internal/normalize"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const analysisPromptTemplate = `You are an expert study assistant. Analyze the lecture content below and produce a complete study guide.

Respond with ONLY a single JSON object in exactly this format, no code fences, no commentary:
{
  "title": "A short descriptive title for the lecture",
  "summary": "A thorough markdown summary of the lecture",
  "keyPoints": ["key point 1", "key point 2"],
  "flashcards": [
    {"front": "question side", "back": "answer side"}
  ],
  "quizzes": [
    {
      "question": "a multiple choice question",
      "options": ["option A", "option B", "option C", "option D"],
      "correctAnswerIndex": 0,
      "explanation": "why this answer is correct"
    }
  ]
}

Rules:
1. Provide 5-10 key points, 8-15 flashcards and 5-10 quizzes when the content allows.
2. Every quiz must have between 2 and 4 options and correctAnswerIndex must point at the right one.
3. The summary is markdown; use headings and lists where they help.
4. Write in the language of the lecture content.

Lecture content:
%s`

// Analyzer generates study guides through the Gemini API. It owns the
// fixed-count retry loop around the call and the recovery of malformed
// responses.
type Analyzer struct {
	llm         llms.Model
	maxAttempts int
	temperature float64
	maxTokens   int
	logger      *zap.Logger
}

// NewAnalyzer creates a new Analyzer instance
func NewAnalyzer(llm llms.Model, cfg *config.Config, logger *zap.Logger) (*Analyzer, error) {
	if llm == nil {
		return nil, fmt.Errorf("llm client cannot be nil")
	}
	maxAttempts := cfg.Analysis.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Analyzer{
		llm:         llm,
		maxAttempts: maxAttempts,
		temperature: cfg.Gemini.Temperature,
		maxTokens:   cfg.Gemini.MaxOutputTokens,
		logger:      logger,
	}, nil
}

// GenerateAnalysis implements domain.AnalysisGenerator. Transport and parse
// failures are retried up to the configured attempt count; the retries are
// sequential. After exhaustion the classified error propagates to the caller.
func (a *Analyzer) GenerateAnalysis(ctx context.Context, content string) (*domain.LectureAnalysis, error) {
	prompt := fmt.Sprintf(analysisPromptTemplate, content)

	var lastErr error
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, domain.NewAnalysisFailedError("Analysis was cancelled", err)
		}

		raw, err := llms.GenerateFromSinglePrompt(ctx, a.llm, prompt,
			llms.WithTemperature(a.temperature),
			llms.WithMaxTokens(a.maxTokens),
			llms.WithJSONMode(),
		)
		if err != nil {
			lastErr = err
			a.logger.Warn("Gemini call failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", a.maxAttempts),
				zap.Error(err))
			if classified := classifyCallError(err); classified != nil && !isRetryable(classified) {
				return nil, classified
			}
			continue
		}

		analysis, err := normalize.Normalize(raw)
		if err != nil {
			lastErr = err
			a.logger.Warn("Gemini response could not be normalized",
				zap.Int("attempt", attempt),
				zap.String("response_snippet", snippet(raw, 200)),
				zap.Error(err))
			continue
		}

		a.logger.Info("Lecture analysis generated",
			zap.Int("attempt", attempt),
			zap.String("title", analysis.Title),
			zap.Int("key_points", len(analysis.KeyPoints)),
			zap.Int("flashcards", len(analysis.Flashcards)),
			zap.Int("quizzes", len(analysis.Quizzes)))
		return analysis, nil
	}

	if classified := classifyCallError(lastErr); classified != nil {
		return nil, classified
	}
	if errors.Is(lastErr, normalize.ErrEmptyAnalysis) {
		return nil, domain.NewAnalysisFailedError("The AI service returned a malformed response", lastErr)
	}
	return nil, domain.NewAnalysisFailedError("Failed to analyze the lecture content", lastErr)
}

// classifyCallError maps a raw transport error onto the domain taxonomy. The
// Gemini API is treated as an opaque text service, so classification works on
// the error text.
func classifyCallError(err error) *domain.DomainError {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "resource_exhausted"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "overload"),
		strings.Contains(msg, "503"),
		strings.Contains(msg, "unavailable"):
		return domain.NewAIOverloadedError(err)
	case strings.Contains(msg, "safety"),
		strings.Contains(msg, "blocked"),
		strings.Contains(msg, "prohibited"):
		return domain.NewAISafetyBlockedError(err)
	case errors.Is(err, context.DeadlineExceeded),
		strings.Contains(msg, "connection"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "timeout"):
		return domain.NewAnalysisFailedError("Could not reach the AI service", err)
	default:
		return nil
	}
}

// isRetryable reports whether a classified failure is worth another attempt.
// Safety rejections are deterministic and never retried.
func isRetryable(err *domain.DomainError) bool {
	return err.Code != domain.CodeAISafetyBlocked
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ domain.AnalysisGenerator = (*Analyzer)(nil)
