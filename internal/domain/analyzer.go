package domain

import "context"

// AnalysisGenerator produces a structured study guide from raw lecture text.
// Implementations talk to the hosted AI service and are responsible for the
// fixed-count retry loop and response recovery.
type AnalysisGenerator interface {
	GenerateAnalysis(ctx context.Context, content string) (*LectureAnalysis, error)
}

// ChatMessage is one turn of a conversation about a material
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "model"
	Content string `json:"content"`
}

// ChatGenerator answers a follow-up question about a material, grounded in
// the material's analysis.
type ChatGenerator interface {
	GenerateReply(ctx context.Context, analysis *LectureAnalysis, history []ChatMessage, question string) (string, error)
}

// TranscriptFetcher resolves a pasted video link to its transcript text
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, url string) (string, error)
}
