package chat

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/mcardoso/vidsage/internal/errors"
	"github.com/mcardoso/vidsage/internal/model"
	"github.com/mcardoso/vidsage/internal/repository/media"
	"github.com/mcardoso/vidsage/internal/service/llm"
	"github.com/mcardoso/vidsage/internal/store"
	"github.com/mcardoso/vidsage/internal/subtitle"
)

// chatTemperature matches the sampling used for chat exchanges
const chatTemperature = 0.7

const qaSystemPrompt = `Answer questions about the transcript content precisely.
Use EXACTLY the timestamps provided in the text, keeping the [HH:MM:SS] format.
Do not create or modify timestamps - only use the ones present in the text.
If a piece of information appears at multiple moments, you may cite all of them.`

const summarySystemPrompt = `Generate a concise summary of the transcript content.
For each important statement, use EXACTLY the timestamp provided in the text,
keeping the [HH:MM:SS] format as it appears in the context.
Do not create or modify timestamps - only use the ones present in the text.`

const deepAnalysisSystemPrompt = `Analyze the content and, for each important point, use EXACTLY
the timestamps provided in the text, keeping the [HH:MM:SS] format.
Do not create or modify timestamps - only use the ones present in the text.`

// Session bundles everything one conversation needs: the media item, its
// timed cues, and the running history.
type Session struct {
	Item    *model.MediaItem
	Cues    []model.CaptionCue
	History *model.ChatSession
}

// Service runs timestamp-grounded conversations about transcribed videos
type Service interface {
	// LoadSession prepares a chat session for a media item, loading its
	// cues from disk and restoring any persisted history. The transcript
	// file lookup is fuzzy, the database title match is exact.
	LoadSession(ctx context.Context, title string) (*Session, error)

	// Ask sends a question in the given mode and returns the assistant's
	// answer with timestamp citations rewritten as video links. Both the
	// question and the answer are appended to the session history.
	Ask(ctx context.Context, session *Session, mode model.ChatMode, question string) (string, error)

	// SaveHistory persists the session history on its media item
	SaveHistory(ctx context.Context, session *Session) error
}

// chatService implements Service
type chatService struct {
	client llm.Client
	repo   media.Repository
	store  *store.Store
}

// NewService creates a new chat Service
func NewService(client llm.Client, repo media.Repository, st *store.Store) Service {
	return &chatService{
		client: client,
		repo:   repo,
		store:  st,
	}
}

// LoadSession looks the item up by exact title, then loads its cues and
// persisted history.
func (s *chatService) LoadSession(ctx context.Context, title string) (*Session, error) {
	item, err := s.repo.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	cues, err := s.store.LoadCues(item.Title)
	if err != nil {
		return nil, err
	}

	historyData, err := s.repo.GetChatHistory(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	history, err := model.UnmarshalSession(item.ID, historyData)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to restore chat history")
	}

	return &Session{Item: item, Cues: cues, History: history}, nil
}

// Ask builds the timestamped context, queries the model, and links citations
func (s *chatService) Ask(ctx context.Context, session *Session, mode model.ChatMode, question string) (string, error) {
	system, err := systemPromptFor(mode)
	if err != nil {
		return "", err
	}

	user := "Context with timestamps:\n" + buildTimedContext(session.Cues) + "\n\nQuestion: " + question
	answer, err := s.client.Complete(ctx, system, user, chatTemperature)
	if err != nil {
		return "", err
	}

	linked := LinkTimestamps(answer, session.Cues, session.Item.URL)

	session.History.Append(model.RoleUser, question)
	session.History.Append(model.RoleAssistant, linked)

	return linked, nil
}

// SaveHistory serializes and persists the session history
func (s *chatService) SaveHistory(ctx context.Context, session *Session) error {
	data, err := session.History.Marshal()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to serialize chat history")
	}
	return s.repo.SaveChatHistory(ctx, session.Item.ID, data)
}

// buildTimedContext renders cues as "[HH:MM:SS] text" lines so the model can
// cite exact starts.
func buildTimedContext(cues []model.CaptionCue) string {
	var b strings.Builder
	for _, cue := range cues {
		fmt.Fprintf(&b, "[%s] %s\n", subtitle.TrimFraction(cue.Start), cue.Text)
	}
	return b.String()
}

// systemPromptFor maps a chat mode to its instruction. Closed switch so an
// unknown mode fails loudly instead of defaulting.
func systemPromptFor(mode model.ChatMode) (string, error) {
	switch mode {
	case model.ChatModeQA:
		return qaSystemPrompt, nil
	case model.ChatModeSummary:
		return summarySystemPrompt, nil
	case model.ChatModeDeepAnalysis:
		return deepAnalysisSystemPrompt, nil
	default:
		return "", apperrors.New(apperrors.CodeInvalidArg, "unknown chat mode: "+string(mode))
	}
}
