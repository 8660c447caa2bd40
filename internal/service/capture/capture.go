package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/mcardoso/vidsage/internal/errors"
	"github.com/mcardoso/vidsage/internal/model"
	"github.com/mcardoso/vidsage/internal/repository/media"
	"github.com/mcardoso/vidsage/internal/service/common"
	"github.com/mcardoso/vidsage/internal/store"
)

// Service downloads a media item's video and extracts its audio track
type Service interface {
	// Capture downloads the item's video, extracts an MP3 under the media
	// directory, and advances the item to the captured stage. Returns the
	// audio file path.
	Capture(ctx context.Context, item *model.MediaItem) (string, error)
}

// captureService implements Service using yt-dlp and ffmpeg
type captureService struct {
	cmdRunner common.CmdRunner
	repo      media.Repository
	store     *store.Store
}

// NewService creates a new capture Service with the default CmdRunner
func NewService(repo media.Repository, st *store.Store) Service {
	return &captureService{
		cmdRunner: common.NewCmdRunner(),
		repo:      repo,
		store:     st,
	}
}

// NewServiceWithCmdRunner creates a capture Service with a custom CmdRunner (for testing)
func NewServiceWithCmdRunner(cmdRunner common.CmdRunner, repo media.Repository, st *store.Store) Service {
	return &captureService{
		cmdRunner: cmdRunner,
		repo:      repo,
		store:     st,
	}
}

// Capture downloads the video and extracts its audio track as MP3
func (s *captureService) Capture(ctx context.Context, item *model.MediaItem) (string, error) {
	if item.URL == "" {
		return "", apperrors.New(apperrors.CodeInvalidArg, "media item has no URL")
	}

	mediaDir := s.store.MediaDir()
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to create media directory")
	}

	base := store.SanitizeFilename(item.Title)
	videoPath := filepath.Join(mediaDir, base+".mp4")
	audioPath := filepath.Join(mediaDir, base+".mp3")

	downloadArgs := []string{
		"--format", "best[ext=mp4]",
		"--output", videoPath,
		item.URL,
	}
	if _, err := s.cmdRunner.Run(ctx, "yt-dlp", downloadArgs...); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExternal, formatYtDlpError(err, item.URL))
	}

	extractArgs := []string{
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		"-y",
		audioPath,
	}
	if _, err := s.cmdRunner.Run(ctx, "ffmpeg", extractArgs...); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExternal, "audio extraction failed - check that ffmpeg is installed")
	}

	// The video file is only an intermediate artifact
	if err := os.Remove(videoPath); err != nil && !os.IsNotExist(err) {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to remove intermediate video file")
	}

	if err := s.repo.UpdateStage(ctx, item.ID, model.StageCaptured); err != nil {
		return "", err
	}

	return audioPath, nil
}

// formatYtDlpError provides user-friendly error messages for yt-dlp failures
func formatYtDlpError(err error, videoURL string) string {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "Video unavailable"):
		return "video is not available (may be private, deleted, or region-blocked)"
	case strings.Contains(errMsg, "Private video"):
		return "video is private and cannot be downloaded"
	case strings.Contains(errMsg, "No such file or directory") && strings.Contains(errMsg, "yt-dlp"):
		return "yt-dlp is not installed or not found in PATH"
	case strings.Contains(errMsg, "HTTP Error 404"):
		return "video not found - please check the video URL"
	case strings.Contains(errMsg, "403"):
		return "access denied - video may be region-blocked or require login"
	case strings.Contains(errMsg, "429"):
		return "rate limited by YouTube - please try again later"
	default:
		return fmt.Sprintf("video download failed for %s - %s", videoURL, errMsg)
	}
}
