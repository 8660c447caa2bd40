package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcardoso/vidsage/internal/config"
	"github.com/mcardoso/vidsage/internal/repository/media"
	"github.com/mcardoso/vidsage/internal/service/analysis"
	"github.com/mcardoso/vidsage/internal/service/llm"
	"github.com/mcardoso/vidsage/internal/service/pipeline"
	"github.com/mcardoso/vidsage/internal/service/transcribe"
	"github.com/mcardoso/vidsage/internal/store"
)

// transcribeCmd transcribes captured audio
var transcribeCmd = &cobra.Command{
	Use:   "transcribe [TITLE]",
	Short: "Transcribe captured audio",
	Long: `Upload a video's captured audio to the transcription provider, wait for
the result, and store both the plain-text and timed caption transcripts.
With --all, every video in the captured stage is transcribed in sequence.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return fmt.Errorf("provide a video title or use --all")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()

		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		dbPool, err := config.NewDatabasePool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer dbPool.Close()

		mediaRepo := media.NewRepository(dbPool)
		st := store.NewStore(cfg.WorkDir)
		client := transcribe.NewClient(cfg.AssemblyAIAPIKey, cfg.Language)
		transcribeService := transcribe.NewService(client, mediaRepo, st)

		if all {
			analysisService := analysis.NewService(llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.LLMModel))
			batch := pipeline.NewService(mediaRepo, st, transcribeService, analysisService)
			report, err := batch.TranscribePending(ctx)
			if err != nil {
				return fmt.Errorf("batch transcription failed: %w", err)
			}
			printReport("Transcription", report)
			return nil
		}

		title := args[0]
		item, err := mediaRepo.GetByTitle(ctx, title)
		if err != nil {
			return fmt.Errorf("failed to find video: %w", err)
		}

		fmt.Printf("Transcribing: %s\n", item.Title)
		transcript, err := transcribeService.Transcribe(ctx, item)
		if err != nil {
			return fmt.Errorf("failed to transcribe: %w", err)
		}

		fmt.Printf("Transcription complete: %d caption cues, %d characters of text\n",
			len(transcript.Cues), len(transcript.PlainText))
		return nil
	},
}

// printReport summarizes a batch run
func printReport(what string, report *pipeline.Report) {
	fmt.Printf("%s finished: %d processed, %d succeeded, %d failed\n",
		what, report.Processed, report.Succeeded, report.Failed())
	for _, failure := range report.Failures {
		fmt.Printf("- %s: %s\n", failure.Title, failure.Reason)
	}
}

func init() {
	transcribeCmd.Flags().Bool("all", false, "Transcribe every video in the captured stage")
	rootCmd.AddCommand(transcribeCmd)
}
