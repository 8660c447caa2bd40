package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcardoso/vidsage/internal/config"
	"github.com/mcardoso/vidsage/internal/model"
	"github.com/mcardoso/vidsage/internal/repository/media"
	chatSvc "github.com/mcardoso/vidsage/internal/service/chat"
	"github.com/mcardoso/vidsage/internal/service/llm"
	"github.com/mcardoso/vidsage/internal/store"
)

// chatCmd starts an interactive session about a transcribed video
var chatCmd = &cobra.Command{
	Use:   "chat [TITLE]",
	Short: "Chat about a transcribed video",
	Long: `Start an interactive session over a video's timed transcript. Answers
cite moments as [HH:MM:SS] links that jump to that second of the video.
Type 'exit' or press Ctrl-D to finish; the conversation is saved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := args[0]
		modeFlag, _ := cmd.Flags().GetString("mode")
		mode := model.ChatMode(modeFlag)

		ctx := context.Background()

		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		dbPool, err := config.NewDatabasePool(connectCtx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer dbPool.Close()

		mediaRepo := media.NewRepository(dbPool)
		st := store.NewStore(cfg.WorkDir)
		client := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.LLMModel)
		chatService := chatSvc.NewService(client, mediaRepo, st)

		session, err := chatService.LoadSession(ctx, title)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}

		fmt.Printf("Chatting about: %s (%s)\n", session.Item.Title, session.Item.Author)
		if len(session.History.Turns) > 0 {
			fmt.Printf("Restored %d previous message(s).\n", len(session.History.Turns))
		}
		fmt.Println("Ask a question, type 'clear' to discard the history, or 'exit' to finish.")

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}
			if question == "exit" || question == "quit" {
				break
			}
			if question == "clear" {
				session.History.Turns = nil
				fmt.Println("Chat history cleared.")
				continue
			}

			answer, err := chatService.Ask(ctx, session, mode, question)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println(answer)
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		saveCtx, cancelSave := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelSave()
		if err := chatService.SaveHistory(saveCtx, session); err != nil {
			return fmt.Errorf("failed to save chat history: %w", err)
		}
		fmt.Println("Chat history saved.")
		return nil
	},
}

func init() {
	chatCmd.Flags().String("mode", string(model.ChatModeQA), "Interaction mode (qa, summary, deep_analysis)")
	rootCmd.AddCommand(chatCmd)
}
