package transcribe

import (
	"context"
	"os"

	apperrors "github.com/mcardoso/vidsage/internal/errors"
	"github.com/mcardoso/vidsage/internal/model"
	"github.com/mcardoso/vidsage/internal/repository/media"
	"github.com/mcardoso/vidsage/internal/store"
	"github.com/mcardoso/vidsage/internal/subtitle"
)

// Service turns captured audio into stored transcripts
type Service interface {
	// Transcribe runs the full flow for one media item: upload its audio,
	// wait for the provider, segment the word timings into cues, store both
	// transcript forms and advance the item's stage.
	Transcribe(ctx context.Context, item *model.MediaItem) (*model.Transcript, error)
}

// transcribeService implements Service
type transcribeService struct {
	client    Client
	repo      media.Repository
	store     *store.Store
	segmenter *subtitle.Segmenter
}

// NewService creates a new transcription Service
func NewService(client Client, repo media.Repository, st *store.Store) Service {
	return &transcribeService{
		client:    client,
		repo:      repo,
		store:     st,
		segmenter: subtitle.NewSegmenter(subtitle.DefaultSegmenterConfig()),
	}
}

// Transcribe uploads the item's audio file and waits out the provider job
func (s *transcribeService) Transcribe(ctx context.Context, item *model.MediaItem) (*model.Transcript, error) {
	audioPath, err := s.store.FindAudio(item.Title)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to open audio file")
	}
	defer f.Close()

	audioURL, err := s.client.Upload(ctx, f)
	if err != nil {
		return nil, err
	}

	jobID, err := s.client.RequestTranscription(ctx, audioURL)
	if err != nil {
		return nil, err
	}

	result, err := s.client.WaitForCompletion(ctx, jobID)
	if err != nil {
		return nil, err
	}

	cues := s.segmenter.Segment(result.Words)

	transcript := &model.Transcript{
		PlainText: result.Text,
		Cues:      cues,
	}
	if err := s.store.Save(item.Title, transcript); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStage(ctx, item.ID, model.StageTranscribed); err != nil {
		return nil, err
	}

	return transcript, nil
}
