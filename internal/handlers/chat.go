package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"worldwise-backend/internal/middleware"
	"worldwise-backend/internal/models"
	"worldwise-backend/internal/services"
)

type chatService interface {
	Handle(ctx context.Context, message, userID string) (*models.ChatResponse, error)
}

type quotaService interface {
	Consume(ctx context.Context, session *services.Session) error
}

type ChatHandler struct {
	chat  chatService
	quota quotaService
}

func NewChatHandler(chat chatService, quota quotaService) *ChatHandler {
	return &ChatHandler{chat: chat, quota: quota}
}

// Chat handles POST /chat: reply generation, keyword-driven image
// lookup, and the fire-and-forget exchange log.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	// Empty message fails before any quota or upstream work happens.
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required.", r))
		return
	}

	session := middleware.GetSession(r.Context())
	if session != nil {
		if err := h.quota.Consume(r.Context(), session); err != nil {
			handleServiceError(w, r, err)
			return
		}
	}

	// The session user wins over the self-reported user_id field.
	userID := req.UserID
	if session.Authenticated() {
		userID = session.User.ID
	}

	resp, err := h.chat.Handle(r.Context(), req.Message, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
