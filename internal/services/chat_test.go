package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"worldwise-backend/internal/models"
)

type stubGenerator struct {
	reply         string
	replyErr      error
	keyword       string
	keywordErr    error
	generateCalls int
	keywordCalls  int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.generateCalls++
	return s.reply, s.replyErr
}

func (s *stubGenerator) ExtractKeyword(ctx context.Context, userMessage string) (string, error) {
	s.keywordCalls++
	return s.keyword, s.keywordErr
}

type stubSearcher struct {
	images    []string
	err       error
	calls     int
	lastQuery string
	lastLimit int
}

func (s *stubSearcher) Search(ctx context.Context, query string, limit int) ([]string, error) {
	s.calls++
	s.lastQuery = query
	s.lastLimit = limit
	return s.images, s.err
}

type stubQueue struct {
	exchanges []models.StoredExchange
}

func (s *stubQueue) Enqueue(ctx context.Context, exchange models.StoredExchange) error {
	s.exchanges = append(s.exchanges, exchange)
	return nil
}

func (s *stubQueue) Dequeue(ctx context.Context, wait time.Duration) (*models.StoredExchange, error) {
	return nil, ErrQueueEmpty
}

func TestChatService_ReplyAndImages(t *testing.T) {
	gen := &stubGenerator{reply: "Tokyo is lovely in spring.", keyword: "Tokyo"}
	images := &stubSearcher{images: []string{"u1", "u2", "u3", "u4"}}
	svc := NewChatService(gen, images, &stubQueue{})

	resp, err := svc.Handle(context.Background(), "Tell me about Tokyo", "")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if resp.Reply != "Tokyo is lovely in spring." {
		t.Errorf("Expected generated reply, got %q", resp.Reply)
	}
	if len(resp.Images) != 4 {
		t.Errorf("Expected 4 images, got %d", len(resp.Images))
	}
	if images.lastQuery != "Tokyo" {
		t.Errorf("Expected image query 'Tokyo', got %q", images.lastQuery)
	}
	if images.lastLimit != 4 {
		t.Errorf("Expected image limit 4, got %d", images.lastLimit)
	}
}

func TestChatService_EmptyMessageMakesNoOutboundCalls(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{"empty", ""},
		{"whitespace only", "   \t"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := &stubGenerator{}
			images := &stubSearcher{}
			svc := NewChatService(gen, images, &stubQueue{})

			_, err := svc.Handle(context.Background(), tc.message, "")

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if gen.generateCalls != 0 || gen.keywordCalls != 0 || images.calls != 0 {
				t.Errorf("Expected no outbound calls, got generate=%d keyword=%d search=%d",
					gen.generateCalls, gen.keywordCalls, images.calls)
			}
		})
	}
}

func TestChatService_GenerationFailureAbortsRequest(t *testing.T) {
	gen := &stubGenerator{replyErr: &UpstreamError{Message: "Gemini API error"}}
	images := &stubSearcher{}
	svc := NewChatService(gen, images, &stubQueue{})

	_, err := svc.Handle(context.Background(), "hello", "")

	var uErr *UpstreamError
	if !errors.As(err, &uErr) {
		t.Fatalf("Expected UpstreamError, got %v", err)
	}
	if images.calls != 0 {
		t.Errorf("Expected no image lookup after generation failure, got %d calls", images.calls)
	}
}

func TestChatService_KeywordFallbackUsesFirstTwoTokens(t *testing.T) {
	gen := &stubGenerator{
		reply:      "Bangkok street food is famous.",
		keywordErr: errors.New("keyword call failed"),
	}
	images := &stubSearcher{images: []string{"u1"}}
	svc := NewChatService(gen, images, &stubQueue{})

	resp, err := svc.Handle(context.Background(), "Tell me about Bangkok food", "")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if images.lastQuery != "Tell me" {
		t.Errorf("Expected fallback keyword 'Tell me', got %q", images.lastQuery)
	}
	if resp.Reply == "" {
		t.Error("Expected reply to survive keyword failure")
	}
}

func TestChatService_ImageFailureYieldsEmptyList(t *testing.T) {
	gen := &stubGenerator{reply: "A reply.", keyword: "Tokyo"}
	images := &stubSearcher{err: errors.New("provider timeout")}
	svc := NewChatService(gen, images, &stubQueue{})

	resp, err := svc.Handle(context.Background(), "Tell me about Tokyo", "")
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if resp.Images == nil {
		t.Fatal("Expected images to be an empty list, got nil")
	}
	if len(resp.Images) != 0 {
		t.Errorf("Expected 0 images, got %d", len(resp.Images))
	}
	if resp.Reply != "A reply." {
		t.Errorf("Expected reply to survive image failure, got %q", resp.Reply)
	}
}

func TestChatService_EnqueuesExchangeForUser(t *testing.T) {
	gen := &stubGenerator{reply: "A reply.", keyword: "Tokyo"}
	queue := &stubQueue{}
	svc := NewChatService(gen, &stubSearcher{}, queue)

	if _, err := svc.Handle(context.Background(), "hello there", "user-1"); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if len(queue.exchanges) != 1 {
		t.Fatalf("Expected 1 queued exchange, got %d", len(queue.exchanges))
	}
	ex := queue.exchanges[0]
	if ex.UserID != "user-1" || ex.Prompt != "hello there" || ex.Reply != "A reply." {
		t.Errorf("Unexpected exchange record: %+v", ex)
	}
}

func TestChatService_AnonymousExchangeNotQueued(t *testing.T) {
	gen := &stubGenerator{reply: "A reply.", keyword: "Tokyo"}
	queue := &stubQueue{}
	svc := NewChatService(gen, &stubSearcher{}, queue)

	if _, err := svc.Handle(context.Background(), "hello there", ""); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if len(queue.exchanges) != 0 {
		t.Errorf("Expected no queued exchanges for anonymous chat, got %d", len(queue.exchanges))
	}
}

func TestChatService_MissingGeneratorAnswersNotConfigured(t *testing.T) {
	svc := NewChatService(nil, &stubSearcher{}, &stubQueue{})

	_, err := svc.Handle(context.Background(), "hello", "")

	var nErr *NotConfiguredError
	if !errors.As(err, &nErr) {
		t.Fatalf("Expected NotConfiguredError, got %v", err)
	}
}

func TestFallbackKeyword(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{"long message", "Tell me about Bangkok food", "Tell me"},
		{"two words", "Tokyo food", "Tokyo food"},
		{"one word", "Tokyo", "Tokyo"},
		{"extra whitespace", "  Tell   me about it ", "Tell me"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := fallbackKeyword(tc.message)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestTrimKeyword(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"plain", "Tokyo", "Tokyo"},
		{"trailing newline", "Tokyo\n", "Tokyo"},
		{"double quotes", `"Tokyo"`, "Tokyo"},
		{"single quotes", "'Tokyo'", "Tokyo"},
		{"brackets", "[Tokyo]", "Tokyo"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := trimKeyword(tc.raw)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}
