package chat

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/mcardoso/vidsage/internal/errors"
	"github.com/mcardoso/vidsage/internal/model"
	"github.com/mcardoso/vidsage/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLLMClient is a mock implementation of llm.Client
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	args := m.Called(ctx, system, user, temperature)
	return args.String(0), args.Error(1)
}

// MockMediaRepository is a mock implementation of media.Repository
type MockMediaRepository struct {
	mock.Mock
}

func (m *MockMediaRepository) Create(ctx context.Context, item *model.MediaItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockMediaRepository) GetByID(ctx context.Context, id int64) (*model.MediaItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MediaItem), args.Error(1)
}

func (m *MockMediaRepository) GetByTitle(ctx context.Context, title string) (*model.MediaItem, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MediaItem), args.Error(1)
}

func (m *MockMediaRepository) List(ctx context.Context, limit, offset int) ([]*model.MediaItem, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MediaItem), args.Error(1)
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

func (m *MockMediaRepository) UpdateStage(ctx context.Context, id int64, stage string) error {
	args := m.Called(ctx, id, stage)
	return args.Error(0)
}

func (m *MockMediaRepository) SaveAnalysis(ctx context.Context, id int64, kind model.AnalysisKind, content string) error {
	args := m.Called(ctx, id, kind, content)
	return args.Error(0)
}

func (m *MockMediaRepository) SaveChatHistory(ctx context.Context, id int64, history []byte) error {
	args := m.Called(ctx, id, history)
	return args.Error(0)
}

func (m *MockMediaRepository) GetChatHistory(ctx context.Context, id int64) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func setupSessionTest(t *testing.T) (*MockLLMClient, *MockMediaRepository, Service, *store.Store) {
	t.Helper()
	mockClient := new(MockLLMClient)
	mockRepo := new(MockMediaRepository)
	st := store.NewStore(t.TempDir())
	svc := NewService(mockClient, mockRepo, st)
	return mockClient, mockRepo, svc, st
}

func TestChatService_LoadSession(t *testing.T) {
	mockClient, mockRepo, svc, st := setupSessionTest(t)
	_ = mockClient

	item := &model.MediaItem{ID: 7, Title: "My Talk", URL: "https://youtu.be/abc"}
	transcript := &model.Transcript{
		PlainText: "hello there",
		Cues:      []model.CaptionCue{{Start: "00:00:01.000", End: "00:00:02.000", Text: "hello there"}},
	}
	require.NoError(t, st.Save(item.Title, transcript))

	mockRepo.On("GetByTitle", mock.Anything, "My Talk").Return(item, nil)
	mockRepo.On("GetChatHistory", mock.Anything, int64(7)).
		Return([]byte(`[{"role":"user","content":"earlier question"}]`), nil)

	session, err := svc.LoadSession(context.Background(), "My Talk")
	require.NoError(t, err)
	assert.Equal(t, item, session.Item)
	assert.Equal(t, transcript.Cues, session.Cues)
	require.Len(t, session.History.Turns, 1)
	assert.Equal(t, "earlier question", session.History.Turns[0].Content)

	mockRepo.AssertExpectations(t)
}

func TestChatService_LoadSession_MissingTranscript(t *testing.T) {
	_, mockRepo, svc, _ := setupSessionTest(t)

	item := &model.MediaItem{ID: 7, Title: "My Talk", URL: "https://youtu.be/abc"}
	mockRepo.On("GetByTitle", mock.Anything, "My Talk").Return(item, nil)

	_, err := svc.LoadSession(context.Background(), "My Talk")
	assert.ErrorIs(t, err, store.ErrTranscriptNotFound)
}

func TestChatService_Ask(t *testing.T) {
	mockClient, _, svc, _ := setupSessionTest(t)

	session := &Session{
		Item: &model.MediaItem{ID: 7, Title: "My Talk", URL: "https://youtu.be/abc"},
		Cues: []model.CaptionCue{
			{Start: "00:01:05.500", End: "00:01:09.000", Text: "the key idea"},
		},
		History: &model.ChatSession{MediaItemID: 7},
	}

	mockClient.On("Complete", mock.Anything, qaSystemPrompt, mock.MatchedBy(func(user string) bool {
		return strings.Contains(user, "[00:01:05] the key idea") &&
			strings.Contains(user, "Question: where is the key idea?")
	}), chatTemperature).Return("It appears at [00:01:05] in the talk.", nil)

	answer, err := svc.Ask(context.Background(), session, model.ChatModeQA, "where is the key idea?")
	require.NoError(t, err)

	assert.Equal(t, "It appears at [00:01:05](https://youtu.be/abc&t=65) in the talk.", answer)
	require.Len(t, session.History.Turns, 2)
	assert.Equal(t, model.RoleUser, session.History.Turns[0].Role)
	assert.Equal(t, "where is the key idea?", session.History.Turns[0].Content)
	assert.Equal(t, model.RoleAssistant, session.History.Turns[1].Role)
	assert.Equal(t, answer, session.History.Turns[1].Content)

	mockClient.AssertExpectations(t)
}

func TestChatService_Ask_UnknownMode(t *testing.T) {
	mockClient, _, svc, _ := setupSessionTest(t)

	session := &Session{
		Item:    &model.MediaItem{ID: 7, URL: "https://youtu.be/abc"},
		History: &model.ChatSession{MediaItemID: 7},
	}

	_, err := svc.Ask(context.Background(), session, model.ChatMode("freestyle"), "anything")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeInvalidArg, appErr.Code)
	assert.Empty(t, session.History.Turns)
	mockClient.AssertNotCalled(t, "Complete")
}

func TestChatService_SaveHistory(t *testing.T) {
	_, mockRepo, svc, _ := setupSessionTest(t)

	session := &Session{
		Item:    &model.MediaItem{ID: 7},
		History: &model.ChatSession{MediaItemID: 7},
	}
	session.History.Append(model.RoleUser, "hi")
	session.History.Append(model.RoleAssistant, "hello")

	mockRepo.On("SaveChatHistory", mock.Anything, int64(7), mock.MatchedBy(func(data []byte) bool {
		s := string(data)
		return strings.Contains(s, `"hi"`) && strings.Contains(s, `"hello"`)
	})).Return(nil)

	require.NoError(t, svc.SaveHistory(context.Background(), session))
	mockRepo.AssertExpectations(t)
}
