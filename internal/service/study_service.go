package service

import (
	"context"
	"time"

	"studydesk/internal/config"
	"studydesk/internal/domain"
	"studydesk/internal/dto"
	"studydesk/internal/logger"
	"studydesk/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// StudyService defines the core study-assistant operations
type StudyService interface {
	AnalyzeText(ctx context.Context, content, sourceLabel string) (*dto.AnalysisResponse, error)
	AnalyzeURL(ctx context.Context, url string) (*dto.AnalysisResponse, error)

	CreateSubject(ctx context.Context, userID, name string) (*dto.SubjectResponse, error)
	ListSubjects(ctx context.Context, userID string) (*dto.SubjectListResponse, error)
	RenameSubject(ctx context.Context, userID, subjectID, name string) (*dto.SubjectResponse, error)
	DeleteSubject(ctx context.Context, userID, subjectID string) error

	SaveMaterial(ctx context.Context, userID string, req *dto.SaveMaterialRequest) (*dto.MaterialResponse, error)
	ListMaterials(ctx context.Context, userID, subjectID string) (*dto.MaterialListResponse, error)
	GetMaterial(ctx context.Context, userID, materialID string) (*dto.MaterialResponse, error)
	DeleteMaterial(ctx context.Context, userID, materialID string) error
	MoveMaterial(ctx context.Context, userID, materialID, targetSubjectID string) (*dto.MaterialResponse, error)
}

type studyService struct {
	subjects    domain.SubjectRepository
	materials   domain.MaterialRepository
	analyzer    domain.AnalysisGenerator
	transcripts domain.TranscriptFetcher
	cfg         *config.Config

	// Identical lecture content submitted while a request is already in
	// flight shares the upstream call instead of paying for it twice.
	analysisGroup singleflight.Group
}

// NewStudyService creates a new instance of studyService
func NewStudyService(
	subjects domain.SubjectRepository,
	materials domain.MaterialRepository,
	analyzer domain.AnalysisGenerator,
	transcripts domain.TranscriptFetcher,
	cfg *config.Config,
) StudyService {
	return &studyService{
		subjects:    subjects,
		materials:   materials,
		analyzer:    analyzer,
		transcripts: transcripts,
		cfg:         cfg,
	}
}

// AnalyzeText implements StudyService
func (s *studyService) AnalyzeText(ctx context.Context, content, sourceLabel string) (*dto.AnalysisResponse, error) {
	analysis, err := s.analyze(ctx, content)
	if err != nil {
		return nil, err
	}
	return &dto.AnalysisResponse{
		SourceType:  string(domain.SourceTypeFile),
		SourceLabel: sourceLabel,
		Analysis:    analysis,
	}, nil
}

// AnalyzeURL implements StudyService
func (s *studyService) AnalyzeURL(ctx context.Context, url string) (*dto.AnalysisResponse, error) {
	transcript, err := s.transcripts.FetchTranscript(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(transcript) > s.cfg.Analysis.MaxContentBytes {
		transcript = transcript[:s.cfg.Analysis.MaxContentBytes]
	}

	analysis, err := s.analyze(ctx, transcript)
	if err != nil {
		return nil, err
	}
	return &dto.AnalysisResponse{
		SourceType:  string(domain.SourceTypeURL),
		SourceLabel: url,
		Analysis:    analysis,
	}, nil
}

func (s *studyService) analyze(ctx context.Context, content string) (*domain.LectureAnalysis, error) {
	key := util.ContentHash(content)

	result, err, shared := s.analysisGroup.Do(key, func() (interface{}, error) {
		callCtx := ctx
		if s.cfg.Analysis.RequestTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, s.cfg.Analysis.RequestTimeout)
			defer cancel()
		}
		return s.analyzer.GenerateAnalysis(callCtx, content)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Get().Debug("Analysis request coalesced with an identical in-flight request",
			zap.String("content_hash", key))
	}
	return result.(*domain.LectureAnalysis), nil
}

// CreateSubject implements StudyService
func (s *studyService) CreateSubject(ctx context.Context, userID, name string) (*dto.SubjectResponse, error) {
	subject := domain.NewSubject(userID, name)
	subject.ID = util.NewULID()
	if err := subject.Validate(); err != nil {
		return nil, err
	}

	if err := s.subjects.CreateSubject(ctx, subject); err != nil {
		return nil, domain.NewInternalError("Failed to create subject", err)
	}

	logger.Get().Info("Subject created",
		zap.String("subject_id", subject.ID),
		zap.String("user_id", userID))

	resp := dto.NewSubjectResponse(subject)
	return &resp, nil
}

// ListSubjects implements StudyService
func (s *studyService) ListSubjects(ctx context.Context, userID string) (*dto.SubjectListResponse, error) {
	subjects, err := s.subjects.GetSubjectsByUserID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list subjects", err)
	}

	resp := &dto.SubjectListResponse{Subjects: make([]dto.SubjectResponse, 0, len(subjects))}
	for _, subject := range subjects {
		resp.Subjects = append(resp.Subjects, dto.NewSubjectResponse(subject))
	}
	return resp, nil
}

// RenameSubject implements StudyService
func (s *studyService) RenameSubject(ctx context.Context, userID, subjectID, name string) (*dto.SubjectResponse, error) {
	subject, err := s.getOwnedSubject(ctx, userID, subjectID)
	if err != nil {
		return nil, err
	}

	subject.Name = name
	subject.UpdatedAt = time.Now()
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	if err := s.subjects.UpdateSubject(ctx, subject); err != nil {
		return nil, domain.NewInternalError("Failed to rename subject", err)
	}

	resp := dto.NewSubjectResponse(subject)
	return &resp, nil
}

// DeleteSubject implements StudyService
func (s *studyService) DeleteSubject(ctx context.Context, userID, subjectID string) error {
	if _, err := s.getOwnedSubject(ctx, userID, subjectID); err != nil {
		return err
	}
	if err := s.subjects.DeleteSubject(ctx, subjectID); err != nil {
		return domain.NewInternalError("Failed to delete subject", err)
	}

	logger.Get().Info("Subject deleted",
		zap.String("subject_id", subjectID),
		zap.String("user_id", userID))
	return nil
}

// SaveMaterial implements StudyService
func (s *studyService) SaveMaterial(ctx context.Context, userID string, req *dto.SaveMaterialRequest) (*dto.MaterialResponse, error) {
	if _, err := s.getOwnedSubject(ctx, userID, req.SubjectID); err != nil {
		return nil, err
	}

	material := &domain.SavedMaterial{
		ID:          util.NewULID(),
		SubjectID:   req.SubjectID,
		SourceType:  domain.SourceType(req.SourceType),
		SourceLabel: req.SourceLabel,
		Analysis:    req.Analysis,
		CreatedAt:   time.Now(),
	}
	if err := material.Validate(); err != nil {
		return nil, err
	}
	if err := material.Analysis.Validate(); err != nil {
		return nil, err
	}

	if err := s.materials.SaveMaterial(ctx, material); err != nil {
		return nil, domain.NewInternalError("Failed to save material", err)
	}

	logger.Get().Info("Material saved",
		zap.String("material_id", material.ID),
		zap.String("subject_id", material.SubjectID),
		zap.String("source_type", string(material.SourceType)))

	resp := dto.NewMaterialResponse(material, false)
	return &resp, nil
}

// ListMaterials implements StudyService
func (s *studyService) ListMaterials(ctx context.Context, userID, subjectID string) (*dto.MaterialListResponse, error) {
	if _, err := s.getOwnedSubject(ctx, userID, subjectID); err != nil {
		return nil, err
	}

	materials, err := s.materials.GetMaterialsBySubjectID(ctx, subjectID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list materials", err)
	}

	resp := &dto.MaterialListResponse{Materials: make([]dto.MaterialResponse, 0, len(materials))}
	for _, material := range materials {
		resp.Materials = append(resp.Materials, dto.NewMaterialResponse(material, false))
	}
	return resp, nil
}

// GetMaterial implements StudyService
func (s *studyService) GetMaterial(ctx context.Context, userID, materialID string) (*dto.MaterialResponse, error) {
	material, err := s.getOwnedMaterial(ctx, userID, materialID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewMaterialResponse(material, true)
	return &resp, nil
}

// DeleteMaterial implements StudyService
func (s *studyService) DeleteMaterial(ctx context.Context, userID, materialID string) error {
	if _, err := s.getOwnedMaterial(ctx, userID, materialID); err != nil {
		return err
	}
	if err := s.materials.DeleteMaterial(ctx, materialID); err != nil {
		return domain.NewInternalError("Failed to delete material", err)
	}
	return nil
}

// MoveMaterial implements StudyService
func (s *studyService) MoveMaterial(ctx context.Context, userID, materialID, targetSubjectID string) (*dto.MaterialResponse, error) {
	material, err := s.getOwnedMaterial(ctx, userID, materialID)
	if err != nil {
		return nil, err
	}
	if _, err := s.getOwnedSubject(ctx, userID, targetSubjectID); err != nil {
		return nil, err
	}

	if err := s.materials.MoveMaterial(ctx, materialID, targetSubjectID); err != nil {
		return nil, err
	}

	if material.SubjectID != targetSubjectID {
		logger.Get().Info("Material moved",
			zap.String("material_id", materialID),
			zap.String("from_subject_id", material.SubjectID),
			zap.String("to_subject_id", targetSubjectID))
	}

	moved, err := s.materials.GetMaterialByID(ctx, materialID)
	if err != nil || moved == nil {
		return nil, domain.NewInternalError("Failed to reload moved material", err)
	}
	resp := dto.NewMaterialResponse(moved, false)
	return &resp, nil
}

// getOwnedSubject loads a subject and enforces ownership. Foreign subjects
// are reported as not found rather than forbidden.
func (s *studyService) getOwnedSubject(ctx context.Context, userID, subjectID string) (*domain.Subject, error) {
	subject, err := s.subjects.GetSubjectByID(ctx, subjectID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get subject", err)
	}
	if subject == nil || subject.UserID != userID {
		return nil, domain.NewSubjectNotFoundError(subjectID)
	}
	return subject, nil
}

func (s *studyService) getOwnedMaterial(ctx context.Context, userID, materialID string) (*domain.SavedMaterial, error) {
	material, err := s.materials.GetMaterialByID(ctx, materialID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get material", err)
	}
	if material == nil {
		return nil, domain.NewMaterialNotFoundError(materialID)
	}
	if _, err := s.getOwnedSubject(ctx, userID, material.SubjectID); err != nil {
		return nil, domain.NewMaterialNotFoundError(materialID)
	}
	return material, nil
}
