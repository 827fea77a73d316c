package handlers

import (
	"context"
	"log"
	"net/http"

	"worldwise-backend/internal/middleware"
	"worldwise-backend/internal/models"
	"worldwise-backend/internal/services"
)

type GoogleAuth interface {
	StateToken() (string, error)
	VerifyState(state string) error
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*models.User, error)
}

type ProfileUpserter interface {
	Upsert(ctx context.Context, user *models.User) error
}

// AuthHandler owns the cookie-session OAuth surface: login redirect,
// provider callback, logout and the session probe.
type AuthHandler struct {
	google      GoogleAuth
	sessions    *services.SessionService
	loader      *middleware.SessionLoader
	profiles    ProfileUpserter
	frontendURL string
}

func NewAuthHandler(
	google GoogleAuth,
	sessions *services.SessionService,
	loader *middleware.SessionLoader,
	profiles ProfileUpserter,
	frontendURL string,
) *AuthHandler {
	return &AuthHandler{
		google:      google,
		sessions:    sessions,
		loader:      loader,
		profiles:    profiles,
		frontendURL: frontendURL,
	}
}

func (h *AuthHandler) failureURL() string {
	return h.frontendURL + "/?login=failed"
}

// GoogleLogin handles GET /auth/google: anonymous → pending.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("NOT_CONFIGURED", "Google sign-in is not configured.", r))
		return
	}

	state, err := h.google.StateToken()
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusFound)
}

// GoogleCallback handles GET /auth/google/callback: pending →
// authenticated on success, back to anonymous on any failure. Failure
// is always a redirect, never a JSON error.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		http.Redirect(w, r, h.failureURL(), http.StatusFound)
		return
	}

	query := r.URL.Query()
	code := query.Get("code")
	if query.Get("error") != "" || code == "" {
		http.Redirect(w, r, h.failureURL(), http.StatusFound)
		return
	}
	if err := h.google.VerifyState(query.Get("state")); err != nil {
		http.Redirect(w, r, h.failureURL(), http.StatusFound)
		return
	}

	user, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("auth: Google callback failed: %v", err)
		http.Redirect(w, r, h.failureURL(), http.StatusFound)
		return
	}

	if h.profiles != nil {
		// Best effort; login proceeds even if the profile write fails.
		if err := h.profiles.Upsert(r.Context(), user); err != nil {
			log.Printf("auth: profile upsert failed for user %s: %v", user.ID, err)
		}
	}

	// Upgrade an existing anonymous session so the quota key carries
	// over; otherwise start a fresh one.
	if session := middleware.GetSession(r.Context()); session != nil {
		if err := h.sessions.Authenticate(r.Context(), session, user); err != nil {
			log.Printf("auth: failed to upgrade session: %v", err)
			http.Redirect(w, r, h.failureURL(), http.StatusFound)
			return
		}
	} else {
		_, cookieValue, err := h.sessions.Create(r.Context(), user)
		if err != nil {
			log.Printf("auth: failed to create session: %v", err)
			http.Redirect(w, r, h.failureURL(), http.StatusFound)
			return
		}
		http.SetCookie(w, h.loader.Cookie(cookieValue))
	}

	http.Redirect(w, r, h.frontendURL, http.StatusFound)
}

// Logout handles GET /logout: authenticated → anonymous, always.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookieValue := middleware.SessionCookieValue(r); cookieValue != "" {
		if err := h.sessions.Destroy(r.Context(), cookieValue); err != nil {
			log.Printf("auth: failed to destroy session: %v", err)
		}
	}
	http.SetCookie(w, h.loader.ClearCookie())
	http.Redirect(w, r, h.frontendURL, http.StatusFound)
}

// Me handles GET /me: a pure read of session state.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if !session.Authenticated() {
		writeJSON(w, http.StatusUnauthorized, models.MeResponse{User: nil})
		return
	}
	writeJSON(w, http.StatusOK, models.MeResponse{User: session.User})
}
