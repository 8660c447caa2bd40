package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcardoso/vidsage/internal/config"
	"github.com/mcardoso/vidsage/internal/repository/media"
	"github.com/mcardoso/vidsage/internal/service/capture"
	"github.com/mcardoso/vidsage/internal/service/ingest"
	"github.com/mcardoso/vidsage/internal/store"
)

// videoCmd represents the video command
var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Video library operations",
	Long:  `Operations for registering videos and managing the local library.`,
}

// videoIngestCmd registers a new video by URL
var videoIngestCmd = &cobra.Command{
	Use:   "ingest [URL]",
	Short: "Register a YouTube video by URL",
	Long:  `Validate the URL, scrape the video page for metadata, and register the video.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoURL := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
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

		ingestService := ingest.NewService(media.NewRepository(dbPool))

		item, err := ingestService.Ingest(ctx, videoURL)
		if err != nil {
			return fmt.Errorf("failed to ingest video: %w", err)
		}

		fmt.Printf("Registered video %d: %s\n", item.ID, item.Title)
		fmt.Printf("Author: %s\n", item.Author)
		fmt.Printf("Duration: %.1f minutes\n", item.DurationMinutes)
		return nil
	},
}

// videoListCmd lists registered videos
var videoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered videos",
	Long:  `List registered videos ordered by title.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		mediaRepo := media.NewRepository(dbPool)
		items, err := mediaRepo.List(ctx, limit, offset)
		if err != nil {
			return fmt.Errorf("failed to list videos: %w", err)
		}

		if len(items) == 0 {
			fmt.Println("No videos registered yet.")
			return nil
		}

		result, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Printf("Found %d video(s):\n%s\n", len(items), string(result))
		return nil
	},
}

// videoPendingCmd lists videos that still lack analysis
var videoPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List videos awaiting analysis",
	Long:  `List registered videos that do not have a summary yet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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
		items, err := mediaRepo.ListPendingAnalysis(ctx)
		if err != nil {
			return fmt.Errorf("failed to list pending videos: %w", err)
		}

		if len(items) == 0 {
			fmt.Println("No videos pending analysis.")
			return nil
		}

		fmt.Printf("Found %d video(s) pending analysis:\n", len(items))
		for _, item := range items {
			fmt.Printf("- %s (stage: %s)\n", item.Title, item.Stage)
		}
		return nil
	},
}

// videoCaptureCmd downloads a video and extracts its audio
var videoCaptureCmd = &cobra.Command{
	Use:   "capture [TITLE]",
	Short: "Download a video and extract its audio",
	Long:  `Download a registered video with yt-dlp and extract its audio track as MP3 using ffmpeg.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
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
		item, err := mediaRepo.GetByTitle(ctx, title)
		if err != nil {
			return fmt.Errorf("failed to find video: %w", err)
		}

		captureService := capture.NewService(mediaRepo, store.NewStore(cfg.WorkDir))

		fmt.Printf("Capturing audio for: %s\n", item.Title)
		audioPath, err := captureService.Capture(ctx, item)
		if err != nil {
			return fmt.Errorf("failed to capture audio: %w", err)
		}

		fmt.Printf("Audio saved to: %s\n", audioPath)
		return nil
	},
}

func init() {
	videoListCmd.Flags().Int("limit", 50, "Maximum number of videos to retrieve")
	videoListCmd.Flags().Int("offset", 0, "Number of videos to skip")

	videoCmd.AddCommand(videoIngestCmd)
	videoCmd.AddCommand(videoListCmd)
	videoCmd.AddCommand(videoPendingCmd)
	videoCmd.AddCommand(videoCaptureCmd)
	rootCmd.AddCommand(videoCmd)
}
