package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"studydesk/internal/config"
	"studydesk/internal/domain"
	"studydesk/internal/dto"
	"studydesk/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testConfig() *config.Config {
	return &config.Config{
		Analysis: config.AnalysisConfig{
			MaxAttempts:     3,
			MaxContentBytes: 1024,
			RequestTimeout:  5 * time.Second,
		},
	}
}

func sampleAnalysis() *domain.LectureAnalysis {
	return &domain.LectureAnalysis{
		Title:     "Photosynthesis",
		Summary:   "How plants convert light into chemical energy.",
		KeyPoints: []string{"Light reactions", "Calvin cycle"},
		Flashcards: []domain.Flashcard{
			{Front: "What pigment absorbs light?", Back: "Chlorophyll"},
		},
		Quizzes: []domain.QuizQuestion{
			{
				Question:           "Where does the Calvin cycle occur?",
				Options:            []string{"Stroma", "Thylakoid", "Nucleus", "Cytosol"},
				CorrectAnswerIndex: 0,
				Explanation:        "Carbon fixation happens in the stroma.",
			},
		},
	}
}

func TestAnalyzeText(t *testing.T) {
	analyzer := new(MockAnalysisGenerator)
	svc := NewStudyService(new(MockSubjectRepository), new(MockMaterialRepository), analyzer, new(MockTranscriptFetcher), testConfig())

	content := "Photosynthesis converts light energy into glucose."
	analyzer.On("GenerateAnalysis", mock.Anything, content).Return(sampleAnalysis(), nil)

	resp, err := svc.AnalyzeText(context.Background(), content, "lecture-03.txt")

	assert.NoError(t, err)
	assert.Equal(t, string(domain.SourceTypeFile), resp.SourceType)
	assert.Equal(t, "lecture-03.txt", resp.SourceLabel)
	assert.Equal(t, "Photosynthesis", resp.Analysis.Title)
	analyzer.AssertExpectations(t)
}

func TestAnalyzeTextPropagatesAnalyzerError(t *testing.T) {
	analyzer := new(MockAnalysisGenerator)
	svc := NewStudyService(new(MockSubjectRepository), new(MockMaterialRepository), analyzer, new(MockTranscriptFetcher), testConfig())

	wantErr := domain.NewAIOverloadedError(errors.New("429"))
	analyzer.On("GenerateAnalysis", mock.Anything, mock.Anything).Return(nil, wantErr)

	_, err := svc.AnalyzeText(context.Background(), "some content", "notes.txt")

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeAIOverloaded, domainErr.Code)
}

func TestAnalyzeURLTruncatesLongTranscript(t *testing.T) {
	analyzer := new(MockAnalysisGenerator)
	fetcher := new(MockTranscriptFetcher)
	cfg := testConfig()
	cfg.Analysis.MaxContentBytes = 100
	svc := NewStudyService(new(MockSubjectRepository), new(MockMaterialRepository), analyzer, fetcher, cfg)

	url := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	fetcher.On("FetchTranscript", mock.Anything, url).Return(strings.Repeat("a", 500), nil)
	analyzer.On("GenerateAnalysis", mock.Anything, mock.MatchedBy(func(content string) bool {
		return len(content) == 100
	})).Return(sampleAnalysis(), nil)

	resp, err := svc.AnalyzeURL(context.Background(), url)

	assert.NoError(t, err)
	assert.Equal(t, string(domain.SourceTypeURL), resp.SourceType)
	assert.Equal(t, url, resp.SourceLabel)
	analyzer.AssertExpectations(t)
}

func TestAnalyzeURLTranscriptUnavailable(t *testing.T) {
	fetcher := new(MockTranscriptFetcher)
	svc := NewStudyService(new(MockSubjectRepository), new(MockMaterialRepository), new(MockAnalysisGenerator), fetcher, testConfig())

	url := "https://www.youtube.com/watch?v=nocaptions1"
	fetcher.On("FetchTranscript", mock.Anything, url).Return("", domain.NewContentUnavailableError(url, nil))

	_, err := svc.AnalyzeURL(context.Background(), url)

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeContentUnavailable, domainErr.Code)
}

// countingAnalyzer blocks until released so concurrent callers overlap.
type countingAnalyzer struct {
	calls   int32
	release chan struct{}
}

func (a *countingAnalyzer) GenerateAnalysis(ctx context.Context, content string) (*domain.LectureAnalysis, error) {
	atomic.AddInt32(&a.calls, 1)
	<-a.release
	return sampleAnalysis(), nil
}

func TestAnalyzeCoalescesIdenticalRequests(t *testing.T) {
	analyzer := &countingAnalyzer{release: make(chan struct{})}
	svc := NewStudyService(new(MockSubjectRepository), new(MockMaterialRepository), analyzer, new(MockTranscriptFetcher), testConfig())

	content := "the same lecture submitted twice"
	var wg sync.WaitGroup
	results := make([]*dto.AnalysisResponse, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := svc.AnalyzeText(context.Background(), content, "dup.txt")
			assert.NoError(t, err)
			results[i] = resp
		}(i)
	}

	// Give both goroutines time to reach the in-flight group before releasing.
	time.Sleep(50 * time.Millisecond)
	close(analyzer.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&analyzer.calls))
	assert.Equal(t, results[0].Analysis.Title, results[1].Analysis.Title)
}

func TestCreateSubject(t *testing.T) {
	subjects := new(MockSubjectRepository)
	svc := NewStudyService(subjects, new(MockMaterialRepository), new(MockAnalysisGenerator), new(MockTranscriptFetcher), testConfig())

	subjects.On("CreateSubject", mock.Anything, mock.MatchedBy(func(s *domain.Subject) bool {
		return s.Name == "Biology" && s.UserID == "user-1" && s.ID != ""
	})).Return(nil)

	resp, err := svc.CreateSubject(context.Background(), "user-1", "Biology")

	assert.NoError(t, err)
	assert.Equal(t, "Biology", resp.Name)
	assert.NotEmpty(t, resp.ID)
	subjects.AssertExpectations(t)
}

func TestCreateSubjectEmptyName(t *testing.T) {
	svc := NewStudyService(new(MockSubjectRepository), new(MockMaterialRepository), new(MockAnalysisGenerator), new(MockTranscriptFetcher), testConfig())

	_, err := svc.CreateSubject(context.Background(), "user-1", "   ")
	assert.Error(t, err)
}

func TestRenameSubjectForeignSubjectReportedAsNotFound(t *testing.T) {
	subjects := new(MockSubjectRepository)
	svc := NewStudyService(subjects, new(MockMaterialRepository), new(MockAnalysisGenerator), new(MockTranscriptFetcher), testConfig())

	subjectID := util.NewULID()
	subjects.On("GetSubjectByID", mock.Anything, subjectID).Return(&domain.Subject{
		ID:     subjectID,
		UserID: "someone-else",
		Name:   "Chemistry",
	}, nil)

	_, err := svc.RenameSubject(context.Background(), "user-1", subjectID, "Organic Chemistry")

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeSubjectNotFound, domainErr.Code)
}

func TestSaveMaterial(t *testing.T) {
	subjects := new(MockSubjectRepository)
	materials := new(MockMaterialRepository)
	svc := NewStudyService(subjects, materials, new(MockAnalysisGenerator), new(MockTranscriptFetcher), testConfig())

	subjectID := util.NewULID()
	subjects.On("GetSubjectByID", mock.Anything, subjectID).Return(&domain.Subject{
		ID:     subjectID,
		UserID: "user-1",
		Name:   "Biology",
	}, nil)
	materials.On("SaveMaterial", mock.Anything, mock.MatchedBy(func(mat *domain.SavedMaterial) bool {
		return mat.SubjectID == subjectID && mat.ID != ""
	})).Return(nil)

	resp, err := svc.SaveMaterial(context.Background(), "user-1", &dto.SaveMaterialRequest{
		SubjectID:   subjectID,
		SourceType:  string(domain.SourceTypeFile),
		SourceLabel: "lecture-03.txt",
		Analysis:    sampleAnalysis(),
	})

	assert.NoError(t, err)
	assert.Equal(t, subjectID, resp.SubjectID)
	assert.Equal(t, "Photosynthesis", resp.Title)
	materials.AssertExpectations(t)
}

func TestSaveMaterialRejectsEmptyAnalysis(t *testing.T) {
	subjects := new(MockSubjectRepository)
	svc := NewStudyService(subjects, new(MockMaterialRepository), new(MockAnalysisGenerator), new(MockTranscriptFetcher), testConfig())

	subjectID := util.NewULID()
	subjects.On("GetSubjectByID", mock.Anything, subjectID).Return(&domain.Subject{
		ID:     subjectID,
		UserID: "user-1",
		Name:   "Biology",
	}, nil)

	_, err := svc.SaveMaterial(context.Background(), "user-1", &dto.SaveMaterialRequest{
		SubjectID:  subjectID,
		SourceType: string(domain.SourceTypeFile),
		Analysis:   &domain.LectureAnalysis{},
	})
	assert.Error(t, err)
}

func TestGetMaterialIncludesAnalysis(t *testing.T) {
	subjects := new(MockSubjectRepository)
	materials := new(MockMaterialRepository)
	svc := NewStudyService(subjects, materials, new(MockAnalysisGenerator), new(MockTranscriptFetcher), testConfig())

	subjectID := util.NewULID()
	materialID := util.NewULID()
	materials.On("GetMaterialByID", mock.Anything, materialID).Return(&domain.SavedMaterial{
		ID:          materialID,
		SubjectID:   subjectID,
		SourceType:  domain.SourceTypeFile,
		SourceLabel: "lecture-03.txt",
		Analysis:    sampleAnalysis(),
	}, nil)
	subjects.On("GetSubjectByID", mock.Anything, subjectID).Return(&domain.Subject{
		ID:     subjectID,
		UserID: "user-1",
		Name:   "Biology",
	}, nil)

	resp, err := svc.GetMaterial(context.Background(), "user-1", materialID)

	assert.NoError(t, err)
	assert.NotNil(t, resp.Analysis)
	assert.Equal(t, "Photosynthesis", resp.Analysis.Title)
}

func TestGetMaterialOwnedByAnotherUser(t *testing.T) {
	subjects := new(MockSubjectRepository)
	materials := new(MockMaterialRepository)
	svc := NewStudyService(subjects, materials, new(MockAnalysisGenerator), new(MockTranscriptFetcher), testConfig())

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

	_, err := svc.GetMaterial(context.Background(), "user-1", materialID)

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeMaterialNotFound, domainErr.Code)
}

func TestMoveMaterial(t *testing.T) {
	subjects := new(MockSubjectRepository)
	materials := new(MockMaterialRepository)
	svc := NewStudyService(subjects, materials, new(MockAnalysisGenerator), new(MockTranscriptFetcher), testConfig())

	sourceID := util.NewULID()
	targetID := util.NewULID()
	materialID := util.NewULID()

	material := &domain.SavedMaterial{
		ID:        materialID,
		SubjectID: sourceID,
		Analysis:  sampleAnalysis(),
	}
	moved := &domain.SavedMaterial{
		ID:        materialID,
		SubjectID: targetID,
		Analysis:  sampleAnalysis(),
	}

	materials.On("GetMaterialByID", mock.Anything, materialID).Return(material, nil).Once()
	subjects.On("GetSubjectByID", mock.Anything, sourceID).Return(&domain.Subject{ID: sourceID, UserID: "user-1", Name: "Biology"}, nil)
	subjects.On("GetSubjectByID", mock.Anything, targetID).Return(&domain.Subject{ID: targetID, UserID: "user-1", Name: "Botany"}, nil)
	materials.On("MoveMaterial", mock.Anything, materialID, targetID).Return(nil)
	materials.On("GetMaterialByID", mock.Anything, materialID).Return(moved, nil)

	resp, err := svc.MoveMaterial(context.Background(), "user-1", materialID, targetID)

	assert.NoError(t, err)
	assert.Equal(t, targetID, resp.SubjectID)
	materials.AssertExpectations(t)
}

func TestMoveMaterialToForeignSubject(t *testing.T) {
	subjects := new(MockSubjectRepository)
	materials := new(MockMaterialRepository)
	svc := NewStudyService(subjects, materials, new(MockAnalysisGenerator), new(MockTranscriptFetcher), testConfig())

	sourceID := util.NewULID()
	targetID := util.NewULID()
	materialID := util.NewULID()

	materials.On("GetMaterialByID", mock.Anything, materialID).Return(&domain.SavedMaterial{
		ID:        materialID,
		SubjectID: sourceID,
		Analysis:  sampleAnalysis(),
	}, nil)
	subjects.On("GetSubjectByID", mock.Anything, sourceID).Return(&domain.Subject{ID: sourceID, UserID: "user-1", Name: "Biology"}, nil)
	subjects.On("GetSubjectByID", mock.Anything, targetID).Return(&domain.Subject{ID: targetID, UserID: "someone-else", Name: "Theirs"}, nil)

	_, err := svc.MoveMaterial(context.Background(), "user-1", materialID, targetID)

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeSubjectNotFound, domainErr.Code)
	materials.AssertNotCalled(t, "MoveMaterial", mock.Anything, mock.Anything, mock.Anything)
}

func TestListSubjects(t *testing.T) {
	subjects := new(MockSubjectRepository)
	svc := NewStudyService(subjects, new(MockMaterialRepository), new(MockAnalysisGenerator), new(MockTranscriptFetcher), testConfig())

	subjects.On("GetSubjectsByUserID", mock.Anything, "user-1").Return([]*domain.Subject{
		{ID: util.NewULID(), UserID: "user-1", Name: "Botany", MaterialIDs: []string{"a", "b"}},
		{ID: util.NewULID(), UserID: "user-1", Name: "Biology"},
	}, nil)

	resp, err := svc.ListSubjects(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Len(t, resp.Subjects, 2)
	assert.Equal(t, 2, resp.Subjects[0].MaterialCount)
}
