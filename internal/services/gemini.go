package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const keywordPromptTemplate = "Extract a single keyword (place, food, or theme) from this user query for image search. Only return the keyword.\nQuery: %s"

// geminiCallTimeout bounds every generation call so a hung upstream
// cannot hang the request forever.
const geminiCallTimeout = 60 * time.Second

type GeminiService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	rateChan chan struct{} // Token bucket
}

func NewGeminiService(apiKey string, concurrentReqs int) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")
	model.SetTemperature(0.7)
	model.SetTopP(0.95)

	// Token bucket capping concurrent upstream calls
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:   client,
		model:    model,
		rateChan: rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// Generate sends a single prompt and returns the raw text completion.
// Any provider failure is wrapped in an UpstreamError; no retries.
func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", &UpstreamError{Message: "Gemini request could not be scheduled", Err: err}
	}
	defer s.releaseRate()

	ctx, cancel := context.WithTimeout(ctx, geminiCallTimeout)
	defer cancel()

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &UpstreamError{Message: "Gemini API error", Err: err}
	}

	return extractText(resp), nil
}

// ExtractKeyword reduces a user message to one short image-search term.
// The caller owns the fallback when this fails.
func (s *GeminiService) ExtractKeyword(ctx context.Context, userMessage string) (string, error) {
	result, err := s.Generate(ctx, fmt.Sprintf(keywordPromptTemplate, userMessage))
	if err != nil {
		return "", err
	}
	return trimKeyword(result), nil
}

// trimKeyword strips surrounding whitespace and a narrow set of quote
// characters the model sometimes wraps its answer in.
func trimKeyword(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), "\"'[]")
}

func extractText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}
