package widget

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPSender posts user turns to the backend /chat route. The cookie
// jar keeps the session cookie, so the server-side quota and exchange
// log see a stable identity.
type HTTPSender struct {
	client *resty.Client
}

func NewHTTPSender(baseURL string) *HTTPSender {
	jar, _ := cookiejar.New(nil)
	return &HTTPSender{
		client: resty.New().
			SetBaseURL(baseURL).
			SetCookieJar(jar).
			SetTimeout(90 * time.Second),
	}
}

func (s *HTTPSender) Send(ctx context.Context, message string) (*Reply, error) {
	var result struct {
		Reply  string   `json:"reply"`
		Images []string `json:"images"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"message": message}).
		SetResult(&result).
		Post("/chat")
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("chat request returned status %d", resp.StatusCode())
	}

	return &Reply{Text: result.Reply, Images: result.Images}, nil
}
