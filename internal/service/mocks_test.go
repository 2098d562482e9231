package service

import (
	"context"
	"os"
	"testing"

	"studydesk/internal/config"
	"studydesk/internal/domain"
	"studydesk/internal/logger"

	"github.com/stretchr/testify/mock"
)

// TestMain initializes the logger for all tests in this package
func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "error"}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}

	exitVal := m.Run()

	_ = logger.Sync()
	os.Exit(exitVal)
}

// --- MockSubjectRepository ---
type MockSubjectRepository struct {
	mock.Mock
}

func (m *MockSubjectRepository) CreateSubject(ctx context.Context, subject *domain.Subject) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func (m *MockSubjectRepository) GetSubjectByID(ctx context.Context, subjectID string) (*domain.Subject, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subject), args.Error(1)
}

func (m *MockSubjectRepository) GetSubjectsByUserID(ctx context.Context, userID string) ([]*domain.Subject, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subject), args.Error(1)
}

func (m *MockSubjectRepository) UpdateSubject(ctx context.Context, subject *domain.Subject) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func (m *MockSubjectRepository) DeleteSubject(ctx context.Context, subjectID string) error {
	args := m.Called(ctx, subjectID)
	return args.Error(0)
}

// --- MockMaterialRepository ---
type MockMaterialRepository struct {
	mock.Mock
}

func (m *MockMaterialRepository) SaveMaterial(ctx context.Context, material *domain.SavedMaterial) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockMaterialRepository) GetMaterialByID(ctx context.Context, materialID string) (*domain.SavedMaterial, error) {
	args := m.Called(ctx, materialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavedMaterial), args.Error(1)
}

func (m *MockMaterialRepository) GetMaterialsBySubjectID(ctx context.Context, subjectID string) ([]*domain.SavedMaterial, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SavedMaterial), args.Error(1)
}

func (m *MockMaterialRepository) DeleteMaterial(ctx context.Context, materialID string) error {
	args := m.Called(ctx, materialID)
	return args.Error(0)
}

func (m *MockMaterialRepository) MoveMaterial(ctx context.Context, materialID, targetSubjectID string) error {
	args := m.Called(ctx, materialID, targetSubjectID)
	return args.Error(0)
}

// --- MockAnalysisGenerator ---
type MockAnalysisGenerator struct {
	mock.Mock
}

func (m *MockAnalysisGenerator) GenerateAnalysis(ctx context.Context, content string) (*domain.LectureAnalysis, error) {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LectureAnalysis), args.Error(1)
}

// --- MockChatGenerator ---
type MockChatGenerator struct {
	mock.Mock
}

func (m *MockChatGenerator) GenerateReply(ctx context.Context, analysis *domain.LectureAnalysis, history []domain.ChatMessage, question string) (string, error) {
	args := m.Called(ctx, analysis, history, question)
	return args.String(0), args.Error(1)
}

// --- MockTranscriptFetcher ---
type MockTranscriptFetcher struct {
	mock.Mock
}

func (m *MockTranscriptFetcher) FetchTranscript(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
