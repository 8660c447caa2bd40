package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/mcardoso/vidsage/internal/errors"
	"github.com/mcardoso/vidsage/internal/model"
)

// DefaultBaseURL is the transcription provider's API root
const DefaultBaseURL = "https://api.assemblyai.com/v2"

const (
	defaultPollInterval  = 5 * time.Second
	defaultMaxPollErrors = 3
	defaultDeadline      = 30 * time.Minute
)

// Job statuses reported by the provider
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// TranscriptResult is a finished transcription job
type TranscriptResult struct {
	ID     string
	Status string
	Text   string
	Words  []model.WordTiming
}

// Client talks to the speech-to-text provider
type Client interface {
	// Upload streams an audio file to the provider and returns its URL
	Upload(ctx context.Context, audio io.Reader) (string, error)

	// RequestTranscription submits a transcription job for an uploaded file
	RequestTranscription(ctx context.Context, audioURL string) (string, error)

	// WaitForCompletion polls a job until it finishes or the deadline passes
	WaitForCompletion(ctx context.Context, jobID string) (*TranscriptResult, error)
}

// assemblyAIClient implements Client against the AssemblyAI REST API
type assemblyAIClient struct {
	baseURL       string
	apiKey        string
	language      string
	httpClient    *http.Client
	pollInterval  time.Duration
	maxPollErrors int
	deadline      time.Duration
}

// NewClient creates a Client for the given API key and transcript language
func NewClient(apiKey, language string) Client {
	return &assemblyAIClient{
		baseURL:       DefaultBaseURL,
		apiKey:        apiKey,
		language:      language,
		httpClient:    &http.Client{Timeout: 2 * time.Minute},
		pollInterval:  defaultPollInterval,
		maxPollErrors: defaultMaxPollErrors,
		deadline:      defaultDeadline,
	}
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL         string `json:"audio_url"`
	LanguageCode     string `json:"language_code"`
	Punctuate        bool   `json:"punctuate"`
	FormatText       bool   `json:"format_text"`
	SpeakerLabels    bool   `json:"speaker_labels"`
	SpeakersExpected int    `json:"speakers_expected"`
}

type transcriptWord struct {
	Text  string `json:"text"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

type transcriptResponse struct {
	ID     string           `json:"id"`
	Status string           `json:"status"`
	Text   string           `json:"text"`
	Words  []transcriptWord `json:"words"`
	Error  string           `json:"error"`
}

// Upload streams the audio bytes to the provider's upload endpoint
func (c *assemblyAIClient) Upload(ctx context.Context, audio io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", audio)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to build upload request")
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var out uploadResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.UploadURL == "" {
		return "", apperrors.New(apperrors.CodeExternal, "upload succeeded but no URL was returned")
	}
	return out.UploadURL, nil
}

// RequestTranscription submits a job with the fixed transcription options:
// automatic punctuation, text formatting and two expected speakers.
func (c *assemblyAIClient) RequestTranscription(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(transcriptRequest{
		AudioURL:         audioURL,
		LanguageCode:     c.language,
		Punctuate:        true,
		FormatText:       true,
		SpeakerLabels:    true,
		SpeakersExpected: 2,
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode transcription request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcript", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to build transcription request")
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var out transcriptResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", apperrors.New(apperrors.CodeExternal, "transcription request accepted but no job ID returned")
	}
	return out.ID, nil
}

// WaitForCompletion polls the job status at a fixed interval. Transient
// polling failures are tolerated up to maxPollErrors in a row; hitting the
// overall deadline returns a timeout error.
func (c *assemblyAIClient) WaitForCompletion(ctx context.Context, jobID string) (*TranscriptResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deadline)
	defer cancel()

	consecutiveErrors := 0
	for {
		resp, err := c.poll(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, apperrors.Wrap(ctx.Err(), apperrors.CodeTimeout, "transcription did not finish before the deadline")
			}
			consecutiveErrors++
			if consecutiveErrors >= c.maxPollErrors {
				return nil, err
			}
		} else {
			consecutiveErrors = 0
			switch resp.Status {
			case StatusCompleted:
				return toResult(resp), nil
			case StatusError:
				return nil, apperrors.New(apperrors.CodeExternal, "transcription failed: "+resp.Error)
			}
		}

		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(ctx.Err(), apperrors.CodeTimeout, "transcription did not finish before the deadline")
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *assemblyAIClient) poll(ctx context.Context, jobID string) (*transcriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcript/"+jobID, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build status request")
	}
	req.Header.Set("Authorization", c.apiKey)

	var out transcriptResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *assemblyAIClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, "transcription provider request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := fmt.Sprintf("transcription provider returned status %d: %s", resp.StatusCode, string(body))
		return apperrors.New(apperrors.CodeExternal, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, "failed to decode provider response")
	}
	return nil
}

func toResult(resp *transcriptResponse) *TranscriptResult {
	words := make([]model.WordTiming, len(resp.Words))
	for i, w := range resp.Words {
		words[i] = model.WordTiming{Text: w.Text, StartMS: w.Start, EndMS: w.End}
	}
	return &TranscriptResult{
		ID:     resp.ID,
		Status: resp.Status,
		Text:   resp.Text,
		Words:  words,
	}
}
