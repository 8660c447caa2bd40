package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/mcardoso/vidsage/internal/model"
	"github.com/mcardoso/vidsage/internal/repository/media"
	"github.com/mcardoso/vidsage/internal/service/transcribe"
	"github.com/mcardoso/vidsage/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMediaRepository covers what the batch flows touch
type MockMediaRepository struct {
	mock.Mock
	media.Repository
}

func (m *MockMediaRepository) ListByStage(ctx context.Context, stage string) ([]*model.MediaItem, error) {
	args := m.Called(ctx, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MediaItem), args.Error(1)
}

func (m *MockMediaRepository) ListPendingAnalysis(ctx context.Context) ([]*model.MediaItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MediaItem), args.Error(1)
}

func (m *MockMediaRepository) SaveAnalysis(ctx context.Context, id int64, kind model.AnalysisKind, content string) error {
	args := m.Called(ctx, id, kind, content)
	return args.Error(0)
}

func (m *MockMediaRepository) UpdateStage(ctx context.Context, id int64, stage string) error {
	args := m.Called(ctx, id, stage)
	return args.Error(0)
}

// MockTranscribeService is a mock implementation of transcribe.Service
type MockTranscribeService struct {
	mock.Mock
}

func (m *MockTranscribeService) Transcribe(ctx context.Context, item *model.MediaItem) (*model.Transcript, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transcript), args.Error(1)
}

// MockAnalysisService is a mock implementation of analysis.Service
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, text string, kind model.AnalysisKind) (string, error) {
	args := m.Called(ctx, text, kind)
	return args.String(0), args.Error(1)
}

func (m *MockAnalysisService) AnalyzeAll(ctx context.Context, text string) ([]model.AnalysisResult, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AnalysisResult), args.Error(1)
}

func newTestPipeline(t *testing.T) (*MockMediaRepository, *MockTranscribeService, *MockAnalysisService, *store.Store, *pipelineService) {
	t.Helper()
	mockRepo := new(MockMediaRepository)
	mockTranscribe := new(MockTranscribeService)
	mockAnalyze := new(MockAnalysisService)
	st := store.NewStore(t.TempDir())

	svc := &pipelineService{
		repo:       mockRepo,
		store:      st,
		transcribe: mockTranscribe,
		analyze:    mockAnalyze,
		sleep:      func(ctx context.Context, d time.Duration) {},
	}
	return mockRepo, mockTranscribe, mockAnalyze, st, svc
}

var _ transcribe.Service = (*MockTranscribeService)(nil)

func TestPipelineService_TranscribePending(t *testing.T) {
	mockRepo, mockTranscribe, _, _, svc := newTestPipeline(t)

	items := []*model.MediaItem{
		{ID: 1, Title: "First", Stage: model.StageCaptured},
		{ID: 2, Title: "Second", Stage: model.StageCaptured},
		{ID: 3, Title: "Third", Stage: model.StageCaptured},
	}
	mockRepo.On("ListByStage", mock.Anything, model.StageCaptured).Return(items, nil)

	mockTranscribe.On("Transcribe", mock.Anything, items[0]).Return(&model.Transcript{}, nil)
	// Second item fails but the batch continues
	mockTranscribe.On("Transcribe", mock.Anything, items[1]).Return(nil, assert.AnError)
	mockTranscribe.On("Transcribe", mock.Anything, items[2]).Return(&model.Transcript{}, nil)

	report, err := svc.TranscribePending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.Succeeded)
	require.Equal(t, 1, report.Failed())
	assert.Equal(t, "Second", report.Failures[0].Title)
	mockTranscribe.AssertExpectations(t)
}

func TestPipelineService_TranscribePending_Empty(t *testing.T) {
	mockRepo, mockTranscribe, _, _, svc := newTestPipeline(t)

	mockRepo.On("ListByStage", mock.Anything, model.StageCaptured).Return([]*model.MediaItem{}, nil)

	report, err := svc.TranscribePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	mockTranscribe.AssertNotCalled(t, "Transcribe")
}

func TestPipelineService_AnalyzePending(t *testing.T) {
	mockRepo, _, mockAnalyze, st, svc := newTestPipeline(t)

	item := &model.MediaItem{ID: 1, Title: "First", URL: "https://youtu.be/a", Stage: model.StageTranscribed}
	require.NoError(t, st.Save(item.Title, &model.Transcript{PlainText: "the transcript text"}))

	mockRepo.On("ListPendingAnalysis", mock.Anything).Return([]*model.MediaItem{item}, nil)

	results := []model.AnalysisResult{
		{Kind: model.AnalysisSummary, Text: "summary text"},
		{Kind: model.AnalysisInsights, Text: "insights text"},
		{Kind: model.AnalysisTools, Text: "tools text"},
		{Kind: model.AnalysisCounterIntuitive, Text: "counter text"},
	}
	mockAnalyze.On("AnalyzeAll", mock.Anything, "the transcript text").Return(results, nil)

	for _, result := range results {
		mockRepo.On("SaveAnalysis", mock.Anything, int64(1), result.Kind, result.Text).Return(nil)
	}
	mockRepo.On("UpdateStage", mock.Anything, int64(1), model.StageAnalyzed).Return(nil)

	report, err := svc.AnalyzePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Zero(t, report.Failed())

	mockRepo.AssertExpectations(t)
	mockAnalyze.AssertExpectations(t)
}

func TestPipelineService_AnalyzePending_PartialFailureKeepsCompletedKinds(t *testing.T) {
	mockRepo, _, mockAnalyze, st, svc := newTestPipeline(t)

	item := &model.MediaItem{ID: 1, Title: "First", Stage: model.StageTranscribed}
	require.NoError(t, st.Save(item.Title, &model.Transcript{PlainText: "text"}))

	mockRepo.On("ListPendingAnalysis", mock.Anything).Return([]*model.MediaItem{item}, nil)

	// Only the summary completed before the provider failed
	partial := []model.AnalysisResult{{Kind: model.AnalysisSummary, Text: "summary text"}}
	mockAnalyze.On("AnalyzeAll", mock.Anything, "text").Return(partial, assert.AnError)
	mockRepo.On("SaveAnalysis", mock.Anything, int64(1), model.AnalysisSummary, "summary text").Return(nil)

	report, err := svc.AnalyzePending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 0, report.Succeeded)
	require.Equal(t, 1, report.Failed())
	mockRepo.AssertNotCalled(t, "UpdateStage")
	mockRepo.AssertExpectations(t)
}

func TestPipelineService_AnalyzePending_MissingTranscript(t *testing.T) {
	mockRepo, _, mockAnalyze, _, svc := newTestPipeline(t)

	item := &model.MediaItem{ID: 1, Title: "First", Stage: model.StageTranscribed}
	mockRepo.On("ListPendingAnalysis", mock.Anything).Return([]*model.MediaItem{item}, nil)

	report, err := svc.AnalyzePending(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, report.Failed())
	assert.Equal(t, "First", report.Failures[0].Title)
	mockAnalyze.AssertNotCalled(t, "AnalyzeAll")
}
