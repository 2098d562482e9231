package dto

import (
	"time"

	"studydesk/internal/domain"
)

// AnalyzeTextRequest carries pasted or uploaded lecture text
// @Description Request body for analyzing lecture text
type AnalyzeTextRequest struct {
	Content     string `json:"content"`
	SourceLabel string `json:"source_label"` // original file name
}

// AnalyzeURLRequest carries a pasted video link
// @Description Request body for analyzing a YouTube lecture
type AnalyzeURLRequest struct {
	URL string `json:"url"`
}

// AnalysisResponse wraps the generated study guide together with its origin
type AnalysisResponse struct {
	SourceType  string                  `json:"source_type"`
	SourceLabel string                  `json:"source_label"`
	Analysis    *domain.LectureAnalysis `json:"analysis"`
}

// CreateSubjectRequest names a new subject folder
type CreateSubjectRequest struct {
	Name string `json:"name"`
}

// RenameSubjectRequest renames an existing subject
type RenameSubjectRequest struct {
	Name string `json:"name"`
}

// SubjectResponse represents a subject in the API response
type SubjectResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	MaterialCount int       `json:"material_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SubjectListResponse lists a user's subjects
type SubjectListResponse struct {
	Subjects []SubjectResponse `json:"subjects"`
}

// SaveMaterialRequest stores a generated study guide under a subject
type SaveMaterialRequest struct {
	SubjectID   string                  `json:"subject_id"`
	SourceType  string                  `json:"source_type"` // "file" or "url"
	SourceLabel string                  `json:"source_label"`
	Analysis    *domain.LectureAnalysis `json:"analysis"`
}

// MoveMaterialRequest transfers a material to another subject
type MoveMaterialRequest struct {
	TargetSubjectID string `json:"target_subject_id"`
}

// MaterialResponse represents a saved material in the API response. The full
// analysis is included only when a single material is fetched.
type MaterialResponse struct {
	ID          string                  `json:"id"`
	SubjectID   string                  `json:"subject_id"`
	Title       string                  `json:"title"`
	SourceType  string                  `json:"source_type"`
	SourceLabel string                  `json:"source_label"`
	CreatedAt   time.Time               `json:"created_at"`
	Analysis    *domain.LectureAnalysis `json:"analysis,omitempty"`
}

// MaterialListResponse lists the materials of one subject
type MaterialListResponse struct {
	Materials []MaterialResponse `json:"materials"`
}

// ChatRequest asks a question about a saved material
type ChatRequest struct {
	Question string               `json:"question"`
	History  []domain.ChatMessage `json:"history,omitempty"`
}

// ChatResponse carries the tutor's reply
type ChatResponse struct {
	Reply string `json:"reply"`
}

// NewSubjectResponse converts a domain subject
func NewSubjectResponse(subject *domain.Subject) SubjectResponse {
	return SubjectResponse{
		ID:            subject.ID,
		Name:          subject.Name,
		MaterialCount: len(subject.MaterialIDs),
		CreatedAt:     subject.CreatedAt,
		UpdatedAt:     subject.UpdatedAt,
	}
}

// NewMaterialResponse converts a domain material, optionally embedding the
// full analysis.
func NewMaterialResponse(material *domain.SavedMaterial, includeAnalysis bool) MaterialResponse {
	resp := MaterialResponse{
		ID:          material.ID,
		SubjectID:   material.SubjectID,
		SourceType:  string(material.SourceType),
		SourceLabel: material.SourceLabel,
		CreatedAt:   material.CreatedAt,
	}
	if material.Analysis != nil {
		resp.Title = material.Analysis.Title
		if includeAnalysis {
			resp.Analysis = material.Analysis
		}
	}
	if resp.Title == "" {
		resp.Title = material.SourceLabel
	}
	return resp
}
