package handlers

import (
	"context"
	"net/http"

	"worldwise-backend/internal/models"
)

const standaloneImageLimit = 3

type imageSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

type ImagesHandler struct {
	images imageSearcher
}

func NewImagesHandler(images imageSearcher) *ImagesHandler {
	return &ImagesHandler{images: images}
}

// Search handles GET /images?q=. Unlike the chat flow, a provider
// failure here surfaces as a 500 instead of an empty list.
func (h *ImagesHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Query parameter q is required.", r))
		return
	}

	images, err := h.images.Search(r.Context(), query, standaloneImageLimit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if images == nil {
		images = []string{}
	}

	writeJSON(w, http.StatusOK, models.ImagesResponse{Images: images})
}
