package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for vidsage
var rootCmd = &cobra.Command{
	Use:   "vidsage",
	Short: "Study assistant for video content",
	Long: `vidsage ingests videos, captures their audio, transcribes them with
word-level timing, runs LLM analyses over the transcripts, and answers
questions about the content with timestamp-linked citations.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
