package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type PexelsService struct {
	client *resty.Client
	apiKey string
}

type pexelsSearchResponse struct {
	Photos []struct {
		Src struct {
			Original string `json:"original"`
		} `json:"src"`
	} `json:"photos"`
}

func NewPexelsService(apiKey string) *PexelsService {
	return &PexelsService{
		client: resty.New().
			SetBaseURL("https://api.pexels.com").
			SetTimeout(15 * time.Second),
		apiKey: apiKey,
	}
}

// Search returns up to limit original-size photo URLs in provider
// order. The chat orchestrator swallows the error and substitutes an
// empty list; the /images route maps it to a 500.
func (s *PexelsService) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if s.apiKey == "" {
		return nil, &NotConfiguredError{Message: "PEXELS_API_KEY not set in environment"}
	}

	var result pexelsSearchResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetQueryParam("query", query).
		SetQueryParam("per_page", fmt.Sprintf("%d", limit)).
		SetResult(&result).
		Get("/v1/search")
	if err != nil {
		return nil, fmt.Errorf("Pexels request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("Pexels returned status %d", resp.StatusCode())
	}

	images := make([]string, 0, limit)
	for _, photo := range result.Photos {
		if len(images) >= limit {
			break
		}
		images = append(images, photo.Src.Original)
	}
	return images, nil
}
