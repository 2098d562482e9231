package domain

import (
	"context"
	"strings"
	"time"
)

// SourceType identifies where a material's content came from
type SourceType string

const (
	SourceTypeFile SourceType = "file"
	SourceTypeURL  SourceType = "url"
)

// SavedMaterial wraps one LectureAnalysis together with its origin.
// A material is owned by exactly one Subject at a time.
type SavedMaterial struct {
	ID          string
	SubjectID   string
	SourceType  SourceType
	SourceLabel string // original file name or pasted URL
	Analysis    *LectureAnalysis
	CreatedAt   time.Time
}

// Validate validates the material
func (m *SavedMaterial) Validate() error {
	if m.SubjectID == "" {
		return NewValidationErrorMsg("subject ID is required")
	}
	if m.SourceType != SourceTypeFile && m.SourceType != SourceTypeURL {
		return NewValidationErrorMsg("source type must be file or url")
	}
	if m.Analysis == nil {
		return NewValidationErrorMsg("analysis is required")
	}
	return nil
}

// Subject is a user-defined folder grouping materials. MaterialIDs preserves
// display order; the newest material sits at the front.
type Subject struct {
	ID          string
	UserID      string
	Name        string
	MaterialIDs []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSubject creates a new Subject instance
func NewSubject(userID, name string) *Subject {
	now := time.Now()
	return &Subject{
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the subject
func (s *Subject) Validate() error {
	if s.UserID == "" {
		return NewValidationErrorMsg("user ID is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return NewValidationErrorMsg("name is required")
	}
	return nil
}

// SubjectRepository defines the interface for subject storage
type SubjectRepository interface {
	CreateSubject(ctx context.Context, subject *Subject) error
	GetSubjectByID(ctx context.Context, id string) (*Subject, error)
	GetSubjectsByUserID(ctx context.Context, userID string) ([]*Subject, error)
	UpdateSubject(ctx context.Context, subject *Subject) error
	DeleteSubject(ctx context.Context, id string) error
}

// MaterialRepository defines the interface for material storage
type MaterialRepository interface {
	SaveMaterial(ctx context.Context, material *SavedMaterial) error
	GetMaterialByID(ctx context.Context, id string) (*SavedMaterial, error)
	GetMaterialsBySubjectID(ctx context.Context, subjectID string) ([]*SavedMaterial, error)
	DeleteMaterial(ctx context.Context, id string) error
	// MoveMaterial transfers ownership of a material to another subject.
	// Moving a material to its current subject is a no-op; otherwise the
	// material leaves the source subject's order and is prepended to the
	// target subject's order exactly once.
	MoveMaterial(ctx context.Context, materialID, targetSubjectID string) error
}
