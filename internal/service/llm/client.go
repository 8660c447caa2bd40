package llm

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/mcardoso/vidsage/internal/errors"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// Client is the minimal completion surface the analysis and chat services
// need from a language model.
type Client interface {
	// Complete sends a system instruction and user input, returning the
	// model's text output.
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

// openAIClient implements Client against the OpenAI responses API
type openAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a Client backed by OpenAI
func NewOpenAIClient(apiKey, model string) Client {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openAIClient{
		client: &client,
		model:  model,
	}
}

// Complete sends one request, retrying transient provider failures
func (c *openAIClient) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	params := responses.ResponseNewParams{
		Model:        c.model,
		Instructions: openai.String(system),
		Temperature:  openai.Float(temperature),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(user, responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := callWithRetry(ctx, c.client, params)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExternal, "language model request failed")
	}
	return resp.OutputText(), nil
}

// callWithRetry retries rate-limit and server errors with increasing waits.
// Other errors surface immediately.
func callWithRetry(ctx context.Context, client *openai.Client, params responses.ResponseNewParams) (*responses.Response, error) {
	const maxRetries = 3
	rateLimitWaitTimes := []time.Duration{65 * time.Second, 100 * time.Second, 135 * time.Second}
	serverErrorWaitTimes := []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second}

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := client.Responses.New(ctx, params)
		if err != nil {
			if isRateLimitError(err) {
				if attempt < maxRetries-1 {
					if sleepErr := sleepCtx(ctx, rateLimitWaitTimes[attempt]); sleepErr != nil {
						return nil, sleepErr
					}
					continue
				}
			} else if isServerError(err) {
				if attempt < maxRetries-1 {
					if sleepErr := sleepCtx(ctx, serverErrorWaitTimes[attempt]); sleepErr != nil {
						return nil, sleepErr
					}
					continue
				}
			}
			return nil, err
		}
		return resp, nil
	}
	return nil, apperrors.New(apperrors.CodeExternal, "language model unavailable after retries")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}
