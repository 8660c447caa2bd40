package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mcardoso/vidsage/internal/model"
	"github.com/mcardoso/vidsage/internal/repository/media"
	"github.com/mcardoso/vidsage/internal/service/common"
	"github.com/mcardoso/vidsage/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCmdRunner is a mock implementation of common.CmdRunner
type MockCmdRunner struct {
	mock.Mock
}

func (m *MockCmdRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	callArgs := m.Called(ctx, name, args)
	if callArgs.Get(0) == nil {
		return nil, callArgs.Error(1)
	}
	return callArgs.Get(0).([]byte), callArgs.Error(1)
}

func (m *MockCmdRunner) Start(ctx context.Context, name string, args ...string) (common.Process, error) {
	callArgs := m.Called(ctx, name, args)
	if callArgs.Get(0) == nil {
		return nil, callArgs.Error(1)
	}
	return callArgs.Get(0).(common.Process), callArgs.Error(1)
}

// MockMediaRepository covers only what the capture flow touches
type MockMediaRepository struct {
	mock.Mock
	media.Repository
}

func (m *MockMediaRepository) UpdateStage(ctx context.Context, id int64, stage string) error {
	args := m.Called(ctx, id, stage)
	return args.Error(0)
}

func TestCaptureService_Capture(t *testing.T) {
	st := store.NewStore(t.TempDir())
	mockRunner := new(MockCmdRunner)
	mockRepo := new(MockMediaRepository)
	svc := NewServiceWithCmdRunner(mockRunner, mockRepo, st)

	item := &model.MediaItem{
		ID:    7,
		Title: "My Talk",
		URL:   "https://www.youtube.com/watch?v=abc123",
		Stage: model.StageIngested,
	}

	videoPath := filepath.Join(st.MediaDir(), "My Talk.mp4")
	audioPath := filepath.Join(st.MediaDir(), "My Talk.mp3")

	mockRunner.On("Run", mock.Anything, "yt-dlp", []string{
		"--format", "best[ext=mp4]",
		"--output", videoPath,
		item.URL,
	}).Return([]byte(""), nil)

	mockRunner.On("Run", mock.Anything, "ffmpeg", []string{
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		"-y",
		audioPath,
	}).Return([]byte(""), nil)

	mockRepo.On("UpdateStage", mock.Anything, int64(7), model.StageCaptured).Return(nil)

	got, err := svc.Capture(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, audioPath, got)

	mockRunner.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestCaptureService_Capture_NoURL(t *testing.T) {
	st := store.NewStore(t.TempDir())
	mockRunner := new(MockCmdRunner)
	mockRepo := new(MockMediaRepository)
	svc := NewServiceWithCmdRunner(mockRunner, mockRepo, st)

	_, err := svc.Capture(context.Background(), &model.MediaItem{ID: 1, Title: "No URL"})
	assert.Error(t, err)
	mockRunner.AssertNotCalled(t, "Run")
}

func TestCaptureService_Capture_DownloadFails(t *testing.T) {
	st := store.NewStore(t.TempDir())
	mockRunner := new(MockCmdRunner)
	mockRepo := new(MockMediaRepository)
	svc := NewServiceWithCmdRunner(mockRunner, mockRepo, st)

	item := &model.MediaItem{ID: 7, Title: "My Talk", URL: "https://www.youtube.com/watch?v=abc123"}

	mockRunner.On("Run", mock.Anything, "yt-dlp", mock.Anything).Return(nil, assert.AnError)

	_, err := svc.Capture(context.Background(), item)
	assert.Error(t, err)
	mockRunner.AssertNotCalled(t, "Run", mock.Anything, "ffmpeg", mock.Anything)
	mockRepo.AssertNotCalled(t, "UpdateStage")
}

func TestCaptureService_Capture_RemovesIntermediateVideo(t *testing.T) {
	st := store.NewStore(t.TempDir())
	mockRunner := new(MockCmdRunner)
	mockRepo := new(MockMediaRepository)
	svc := NewServiceWithCmdRunner(mockRunner, mockRepo, st)

	item := &model.MediaItem{ID: 7, Title: "My Talk", URL: "https://www.youtube.com/watch?v=abc123"}
	videoPath := filepath.Join(st.MediaDir(), "My Talk.mp4")

	// Simulate yt-dlp writing the video file
	mockRunner.On("Run", mock.Anything, "yt-dlp", mock.Anything).Run(func(args mock.Arguments) {
		require.NoError(t, os.WriteFile(videoPath, []byte("video"), 0o644))
	}).Return([]byte(""), nil)
	mockRunner.On("Run", mock.Anything, "ffmpeg", mock.Anything).Return([]byte(""), nil)
	mockRepo.On("UpdateStage", mock.Anything, int64(7), model.StageCaptured).Return(nil)

	_, err := svc.Capture(context.Background(), item)
	require.NoError(t, err)

	_, statErr := os.Stat(videoPath)
	assert.True(t, os.IsNotExist(statErr))
}
