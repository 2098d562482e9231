package service

import (
	"context"

	"studydesk/internal/domain"
	"studydesk/internal/dto"
	"studydesk/internal/logger"

	"go.uber.org/zap"
)

// ChatService answers follow-up questions about a saved material
type ChatService interface {
	Chat(ctx context.Context, userID, materialID string, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	subjects  domain.SubjectRepository
	materials domain.MaterialRepository
	generator domain.ChatGenerator
}

// NewChatService creates a new instance of chatService
func NewChatService(
	subjects domain.SubjectRepository,
	materials domain.MaterialRepository,
	generator domain.ChatGenerator,
) ChatService {
	return &chatService{
		subjects:  subjects,
		materials: materials,
		generator: generator,
	}
}

// Chat implements ChatService
func (s *chatService) Chat(ctx context.Context, userID, materialID string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	material, err := s.materials.GetMaterialByID(ctx, materialID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get material", err)
	}
	if material == nil {
		return nil, domain.NewMaterialNotFoundError(materialID)
	}

	subject, err := s.subjects.GetSubjectByID(ctx, material.SubjectID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get subject", err)
	}
	if subject == nil || subject.UserID != userID {
		return nil, domain.NewMaterialNotFoundError(materialID)
	}

	reply, err := s.generator.GenerateReply(ctx, material.Analysis, req.History, req.Question)
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Chat reply generated",
		zap.String("material_id", materialID),
		zap.Int("history_turns", len(req.History)))

	return &dto.ChatResponse{Reply: reply}, nil
}
