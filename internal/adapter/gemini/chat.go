package gemini

import (
	"context"
	"fmt"
	"strings"

	"studydesk/internal/domain"

	"github.com/tmc/langchaingo/llms"
)

const chatSystemPromptTemplate = `You are a helpful study tutor. The student is asking about the study material below. Answer concisely, grounded in the material; say so when the material does not cover the question.

Title: %s

Summary:
%s

Key points:
%s`

// maxChatHistory bounds how many prior turns are replayed to the model.
const maxChatHistory = 20

// GenerateReply implements domain.ChatGenerator. The material's analysis is
// injected as the system context and the bounded conversation history is
// replayed before the new question.
func (a *Analyzer) GenerateReply(ctx context.Context, analysis *domain.LectureAnalysis, history []domain.ChatMessage, question string) (string, error) {
	system := fmt.Sprintf(chatSystemPromptTemplate,
		analysis.Title,
		analysis.Summary,
		"- "+strings.Join(analysis.KeyPoints, "\n- "))

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
	}

	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}
	for _, m := range history {
		role := llms.ChatMessageTypeHuman
		if m.Role == "model" || m.Role == "assistant" {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, m.Content))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, question))

	resp, err := a.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(a.temperature),
		llms.WithMaxTokens(a.maxTokens),
	)
	if err != nil {
		if classified := classifyCallError(err); classified != nil {
			return "", classified
		}
		return "", domain.NewAnalysisFailedError("Failed to generate a chat reply", err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewAnalysisFailedError("The AI service returned an empty reply", nil)
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}

var _ domain.ChatGenerator = (*Analyzer)(nil)
