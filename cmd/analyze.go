package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcardoso/vidsage/internal/config"
	"github.com/mcardoso/vidsage/internal/model"
	"github.com/mcardoso/vidsage/internal/repository/media"
	"github.com/mcardoso/vidsage/internal/service/analysis"
	"github.com/mcardoso/vidsage/internal/service/llm"
	"github.com/mcardoso/vidsage/internal/service/pipeline"
	"github.com/mcardoso/vidsage/internal/service/transcribe"
	"github.com/mcardoso/vidsage/internal/store"
)

// analyzeCmd runs the LLM analysis suite over transcripts
var analyzeCmd = &cobra.Command{
	Use:   "analyze [TITLE]",
	Short: "Run LLM analyses over a transcript",
	Long: `Run the full analysis suite (summary, insights, tools, counter-intuitive
points) over a video's transcript, persist the results, and export a report.
With --all, every video without a summary is analyzed in sequence.
With --kind, only one analysis kind runs and nothing is persisted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		kindFlag, _ := cmd.Flags().GetString("kind")
		if !all && len(args) == 0 {
			return fmt.Errorf("provide a video title or use --all")
		}
		if all && kindFlag != "" {
			return fmt.Errorf("--kind cannot be combined with --all")
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
		analysisService := analysis.NewService(llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.LLMModel))

		if all {
			client := transcribe.NewClient(cfg.AssemblyAIAPIKey, cfg.Language)
			transcribeService := transcribe.NewService(client, mediaRepo, st)
			batch := pipeline.NewService(mediaRepo, st, transcribeService, analysisService)

			report, err := batch.AnalyzePending(ctx)
			if err != nil {
				return fmt.Errorf("batch analysis failed: %w", err)
			}
			printReport("Analysis", report)
			return nil
		}

		title := args[0]
		item, err := mediaRepo.GetByTitle(ctx, title)
		if err != nil {
			return fmt.Errorf("failed to find video: %w", err)
		}

		text, err := st.LoadPlain(item.Title)
		if err != nil {
			return fmt.Errorf("failed to load transcript: %w", err)
		}

		if kindFlag != "" {
			fmt.Printf("Running %s analysis for: %s\n", kindFlag, item.Title)
			result, err := analysisService.Analyze(ctx, text, model.AnalysisKind(kindFlag))
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			fmt.Println(result)
			return nil
		}

		fmt.Printf("Running all analyses for: %s\n", item.Title)
		results, err := analysisService.AnalyzeAll(ctx, text)
		for _, result := range results {
			if saveErr := mediaRepo.SaveAnalysis(ctx, item.ID, result.Kind, result.Text); saveErr != nil {
				return fmt.Errorf("failed to save %s analysis: %w", result.Kind, saveErr)
			}
		}
		if err != nil {
			return fmt.Errorf("analysis failed after %d completed kind(s): %w", len(results), err)
		}

		reportPath, err := st.ExportAnalysisReport(item, results)
		if err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		if err := mediaRepo.UpdateStage(ctx, item.ID, model.StageAnalyzed); err != nil {
			return fmt.Errorf("failed to update stage: %w", err)
		}

		fmt.Printf("All analyses saved. Report exported to: %s\n", reportPath)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Bool("all", false, "Analyze every video without a summary")
	analyzeCmd.Flags().String("kind", "", "Run a single analysis kind (summary, insights, tools, counter_intuitive)")
	rootCmd.AddCommand(analyzeCmd)
}
