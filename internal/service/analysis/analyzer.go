package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcardoso/vidsage/internal/model"
	"github.com/mcardoso/vidsage/internal/service/llm"
)

// MaxChunkChars bounds how much transcript text goes into a single model
// request, leaving headroom for the prompt and the response.
const MaxChunkChars = 12000

// analysisTemperature matches the sampling used for all analysis tasks
const analysisTemperature = 0.7

// combinedHeader prefixes multi-chunk results so readers can tell a stitched
// analysis from a single-pass one.
const combinedHeader = "=== COMBINED ANALYSIS ==="

// Service runs the fixed analysis tasks over transcript text
type Service interface {
	// Analyze runs one analysis kind over the full text, chunking when needed
	Analyze(ctx context.Context, text string, kind model.AnalysisKind) (string, error)

	// AnalyzeAll runs every analysis kind in order, stopping at the first
	// failure. Results for kinds that completed are returned either way.
	AnalyzeAll(ctx context.Context, text string) ([]model.AnalysisResult, error)
}

// analysisService implements Service using a language model client
type analysisService struct {
	client llm.Client
}

// NewService creates a new analysis Service
func NewService(client llm.Client) Service {
	return &analysisService{client: client}
}

// Analyze runs one analysis kind over text. Text longer than MaxChunkChars
// is split into fixed-size chunks, each analyzed with a part annotation, and
// the per-chunk results are concatenated under a combined header.
func (s *analysisService) Analyze(ctx context.Context, text string, kind model.AnalysisKind) (string, error) {
	instruction, err := instructionFor(kind)
	if err != nil {
		return "", err
	}

	chunks := SplitChunks(text, MaxChunkChars)
	responses := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		prompt := instruction
		if len(chunks) > 1 {
			prompt += fmt.Sprintf("\n\nThis is part %d of %d of the full text.", i+1, len(chunks))
		}

		user := prompt + "\n\nTEXT TO ANALYZE:\n" + chunk
		response, err := s.client.Complete(ctx, analysisSystemPrompt, user, analysisTemperature)
		if err != nil {
			return "", err
		}
		responses = append(responses, response)
	}

	if len(responses) > 1 {
		return "\n\n" + combinedHeader + "\n\n" + strings.Join(responses, "\n\n"), nil
	}
	return responses[0], nil
}

// AnalyzeAll runs every kind in the fixed order. On failure it returns the
// results produced so far alongside the error, so callers can persist the
// completed ones.
func (s *analysisService) AnalyzeAll(ctx context.Context, text string) ([]model.AnalysisResult, error) {
	results := []model.AnalysisResult{}
	for _, kind := range model.AllAnalysisKinds() {
		content, err := s.Analyze(ctx, text, kind)
		if err != nil {
			return results, err
		}
		results = append(results, model.AnalysisResult{Kind: kind, Text: content})
	}
	return results, nil
}

// SplitChunks slices text into consecutive pieces of at most maxChars bytes.
// Empty text yields a single empty chunk so callers always get one request.
func SplitChunks(text string, maxChars int) []string {
	if len(text) <= maxChars {
		return []string{text}
	}

	chunks := make([]string, 0, len(text)/maxChars+1)
	for start := 0; start < len(text); start += maxChars {
		end := start + maxChars
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}
