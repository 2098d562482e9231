package service

import (
	"context"
	"testing"

	"studydesk/internal/domain"
	"studydesk/internal/dto"
	"studydesk/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestChat(t *testing.T) {
	subjects := new(MockSubjectRepository)
	materials := new(MockMaterialRepository)
	generator := new(MockChatGenerator)
	svc := NewChatService(subjects, materials, generator)

	subjectID := util.NewULID()
	materialID := util.NewULID()
	analysis := sampleAnalysis()
	history := []domain.ChatMessage{
		{Role: "user", Content: "What is chlorophyll?"},
		{Role: "assistant", Content: "The pigment that absorbs light."},
	}

	materials.On("GetMaterialByID", mock.Anything, materialID).Return(&domain.SavedMaterial{
		ID:        materialID,
		SubjectID: subjectID,
		Analysis:  analysis,
	}, nil)
	subjects.On("GetSubjectByID", mock.Anything, subjectID).Return(&domain.Subject{
		ID:     subjectID,
		UserID: "user-1",
		Name:   "Biology",
	}, nil)
	generator.On("GenerateReply", mock.Anything, analysis, history, "Where does it sit in the cell?").
		Return("In the chloroplast membranes.", nil)

	resp, err := svc.Chat(context.Background(), "user-1", materialID, &dto.ChatRequest{
		Question: "Where does it sit in the cell?",
		History:  history,
	})

	assert.NoError(t, err)
	assert.Equal(t, "In the chloroplast membranes.", resp.Reply)
	generator.AssertExpectations(t)
}

func TestChatUnknownMaterial(t *testing.T) {
	materials := new(MockMaterialRepository)
	svc := NewChatService(new(MockSubjectRepository), materials, new(MockChatGenerator))

	materialID := util.NewULID()
	materials.On("GetMaterialByID", mock.Anything, materialID).Return(nil, nil)

	_, err := svc.Chat(context.Background(), "user-1", materialID, &dto.ChatRequest{Question: "Anything?"})

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeMaterialNotFound, domainErr.Code)
}

func TestChatForeignMaterial(t *testing.T) {
	subjects := new(MockSubjectRepository)
	materials := new(MockMaterialRepository)
	generator := new(MockChatGenerator)
	svc := NewChatService(subjects, materials, generator)

	subjectID := util.NewULID()
	materialID := util.NewULID()
	materials.On("GetMaterialByID", mock.Anything, materialID).Return(&domain.SavedMaterial{
		ID:        materialID,
		SubjectID: subjectID,
		Analysis:  sampleAnalysis(),
	}, nil)
	subjects.On("GetSubjectByID", mock.Anything, subjectID).Return(&domain.Subject{
		ID:     subjectID,
		UserID: "someone-else",
		Name:   "Biology",
	}, nil)

	_, err := svc.Chat(context.Background(), "user-1", materialID, &dto.ChatRequest{Question: "Anything?"})

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeMaterialNotFound, domainErr.Code)
	generator.AssertNotCalled(t, "GenerateReply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
