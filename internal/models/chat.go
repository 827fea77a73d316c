package models

// ChatMessage represents a single turn in a conversation transcript.
type ChatMessage struct {
	Role   string   `json:"role"` // "user" or "assistant"
	Text   string   `json:"text"`
	Images []string `json:"images,omitempty"`
}

// ChatRequest is the payload sent to POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

// ChatResponse is the reply to POST /chat. Images is always present,
// empty rather than null when the image lookup fails.
type ChatResponse struct {
	Reply  string   `json:"reply"`
	Images []string `json:"images"`
}

// ImagesResponse is the reply to GET /images.
type ImagesResponse struct {
	Images []string `json:"images"`
}

// StoredExchange is the fire-and-forget record written to the hosted
// messages table when an authenticated user chats.
type StoredExchange struct {
	UserID string `json:"user_id"`
	Prompt string `json:"prompt"`
	Reply  string `json:"reply"`
}
