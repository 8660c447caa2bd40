package pipeline

import (
	"context"
	"time"

	"github.com/mcardoso/vidsage/internal/model"
	"github.com/mcardoso/vidsage/internal/repository/media"
	"github.com/mcardoso/vidsage/internal/service/analysis"
	"github.com/mcardoso/vidsage/internal/service/transcribe"
	"github.com/mcardoso/vidsage/internal/store"
)

// interItemPause spaces out batch items so provider rate limits stay quiet
const interItemPause = time.Second

// Failure records one item that a batch run could not process
type Failure struct {
	Title  string
	Reason string
}

// Report tallies a batch run
type Report struct {
	Processed int
	Succeeded int
	Failures  []Failure
}

// Failed returns how many items did not complete
func (r *Report) Failed() int {
	return len(r.Failures)
}

// Service runs batch stages over every eligible media item
type Service interface {
	// TranscribePending transcribes every item in the captured stage.
	// Failures are recorded per item; the batch keeps going.
	TranscribePending(ctx context.Context) (*Report, error)

	// AnalyzePending analyzes every item without a summary, persisting each
	// completed analysis kind and exporting a report per item.
	AnalyzePending(ctx context.Context) (*Report, error)
}

// sleeper lets tests skip the inter-item pause
type sleeper func(ctx context.Context, d time.Duration)

// pipelineService implements Service
type pipelineService struct {
	repo       media.Repository
	store      *store.Store
	transcribe transcribe.Service
	analyze    analysis.Service
	sleep      sleeper
}

// NewService creates a new batch pipeline Service
func NewService(repo media.Repository, st *store.Store, ts transcribe.Service, as analysis.Service) Service {
	return &pipelineService{
		repo:       repo,
		store:      st,
		transcribe: ts,
		analyze:    as,
		sleep:      sleepCtx,
	}
}

// TranscribePending transcribes everything still in the captured stage
func (s *pipelineService) TranscribePending(ctx context.Context) (*Report, error) {
	items, err := s.repo.ListByStage(ctx, model.StageCaptured)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for i, item := range items {
		if i > 0 {
			s.sleep(ctx, interItemPause)
		}
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		report.Processed++
		if _, err := s.transcribe.Transcribe(ctx, item); err != nil {
			report.Failures = append(report.Failures, Failure{Title: item.Title, Reason: err.Error()})
			continue
		}
		report.Succeeded++
	}
	return report, nil
}

// AnalyzePending runs the full analysis suite over every unanalyzed item
func (s *pipelineService) AnalyzePending(ctx context.Context) (*Report, error) {
	items, err := s.repo.ListPendingAnalysis(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for i, item := range items {
		if i > 0 {
			s.sleep(ctx, interItemPause)
		}
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		report.Processed++
		if err := s.analyzeItem(ctx, item); err != nil {
			report.Failures = append(report.Failures, Failure{Title: item.Title, Reason: err.Error()})
			continue
		}
		report.Succeeded++
	}
	return report, nil
}

// analyzeItem loads the transcript, runs every analysis kind, and persists
// whatever completed even when a later kind fails.
func (s *pipelineService) analyzeItem(ctx context.Context, item *model.MediaItem) error {
	text, err := s.store.LoadPlain(item.Title)
	if err != nil {
		return err
	}

	results, analyzeErr := s.analyze.AnalyzeAll(ctx, text)
	for _, result := range results {
		if err := s.repo.SaveAnalysis(ctx, item.ID, result.Kind, result.Text); err != nil {
			return err
		}
	}
	if analyzeErr != nil {
		return analyzeErr
	}

	if _, err := s.store.ExportAnalysisReport(item, results); err != nil {
		return err
	}
	return s.repo.UpdateStage(ctx, item.ID, model.StageAnalyzed)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
