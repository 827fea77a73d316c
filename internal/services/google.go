package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"worldwise-backend/internal/models"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// stateTTL bounds how long a login redirect may stay in flight.
const stateTTL = 10 * time.Minute

// GoogleAuthService drives the redirect-based Google sign-in flow.
// The state parameter is a short-lived signed token, so the callback
// can reject requests that did not originate from our /auth/google.
type GoogleAuthService struct {
	oauth  *oauth2.Config
	secret []byte
}

func NewGoogleAuthService(clientID, clientSecret, callbackURL, stateSecret string) *GoogleAuthService {
	return &GoogleAuthService{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		},
		secret: []byte(stateSecret),
	}
}

// StateToken mints the signed state parameter for a new login redirect.
func (s *GoogleAuthService) StateToken() (string, error) {
	claims := jwt.MapClaims{
		"nonce": uuid.NewString(),
		"exp":   time.Now().Add(stateTTL).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyState checks the state parameter returned by Google.
func (s *GoogleAuthService) VerifyState(state string) error {
	token, err := jwt.Parse(state, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return &UnauthorizedError{Message: "Invalid OAuth state"}
	}
	if !token.Valid {
		return &UnauthorizedError{Message: "Invalid OAuth state"}
	}
	return nil
}

// AuthURL is the Google consent page URL for a login redirect.
func (s *GoogleAuthService) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// Exchange trades the callback code for an access token and fetches
// the minimal user record serialized into the session.
func (s *GoogleAuthService) Exchange(ctx context.Context, code string) (*models.User, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, &UnauthorizedError{Message: "Google code exchange failed"}
	}

	resp, err := s.oauth.Client(ctx, token).Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("Google userinfo returned status %d", resp.StatusCode)
	}

	var info struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
		Email   string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode Google userinfo: %w", err)
	}
	if info.ID == "" {
		return nil, &UnauthorizedError{Message: "Google userinfo missing subject"}
	}

	return &models.User{
		ID:          info.ID,
		DisplayName: info.Name,
		Photo:       info.Picture,
		Email:       info.Email,
	}, nil
}
