package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"worldwise-backend/internal/models"
	"worldwise-backend/internal/services"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *services.ValidationError:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", e.Fields, r))
	case *services.UnauthorizedError:
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", e.Message, r))
	case *services.QuotaError:
		writeJSON(w, http.StatusForbidden, errorResp("LOGIN_REQUIRED", "Free message limit reached. Sign in to continue chatting.", r))
	case *services.RateLimitError:
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", e.Message, r))
	case *services.NotConfiguredError:
		log.Printf("handler: %s %s unavailable: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("NOT_CONFIGURED", e.Message, r))
	case *services.UpstreamError:
		// Provider detail goes to the logs, not the caller.
		log.Printf("handler: upstream failure on %s %s: %v", r.Method, r.URL.Path, e.Unwrap())
		writeJSON(w, http.StatusInternalServerError, errorResp("UPSTREAM_ERROR", "Failed to get response from Gemini or Pexels.", r))
	default:
		log.Printf("handler: unexpected error on %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
