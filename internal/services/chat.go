package services

import (
	"context"
	"log"
	"strings"

	"worldwise-backend/internal/models"
)

const systemPrompt = "You are WorldWise AI, a helpful travel and study assistant. Answer with relevant tips, food, colleges, or local phrases based on the user's query."

const chatImageLimit = 4

// TextGenerator is the slice of GeminiService the orchestrator needs.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ExtractKeyword(ctx context.Context, userMessage string) (string, error)
}

// ImageSearcher is the slice of PexelsService the orchestrator needs.
type ImageSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// ChatService sequences the chat request flow: generate a reply,
// derive a search keyword, fetch photos, and hand the exchange to the
// background persister. Only the reply generation may fail the request;
// every auxiliary step degrades silently.
type ChatService struct {
	gemini TextGenerator
	images ImageSearcher
	queue  ExchangeQueue
}

func NewChatService(gemini TextGenerator, images ImageSearcher, queue ExchangeQueue) *ChatService {
	return &ChatService{
		gemini: gemini,
		images: images,
		queue:  queue,
	}
}

func (s *ChatService) Handle(ctx context.Context, message, userID string) (*models.ChatResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, &ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}
	if s.gemini == nil {
		return nil, &NotConfiguredError{Message: "GEMINI_API_KEY not set in environment"}
	}

	reply, err := s.gemini.Generate(ctx, systemPrompt+"\nUser: "+message)
	if err != nil {
		return nil, err
	}

	// Keyword is derived from the raw user message, not the reply.
	keyword, err := s.gemini.ExtractKeyword(ctx, message)
	if err != nil || keyword == "" {
		keyword = fallbackKeyword(message)
	}

	images, err := s.images.Search(ctx, keyword, chatImageLimit)
	if err != nil {
		images = nil
	}
	if images == nil {
		images = []string{}
	}

	if userID != "" && s.queue != nil {
		// Fire and forget: the response never waits on this write.
		if err := s.queue.Enqueue(ctx, models.StoredExchange{
			UserID: userID,
			Prompt: message,
			Reply:  reply,
		}); err != nil {
			log.Printf("chat: failed to enqueue exchange for user %s: %v", userID, err)
		}
	}

	return &models.ChatResponse{Reply: reply, Images: images}, nil
}

// fallbackKeyword is the crude stand-in used when keyword extraction
// fails: the first two whitespace-delimited tokens of the message.
func fallbackKeyword(message string) string {
	tokens := strings.Fields(message)
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}
	return strings.Join(tokens, " ")
}
