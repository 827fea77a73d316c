package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"worldwise-backend/internal/models"
	"worldwise-backend/internal/services"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionLoader attaches the cookie-backed session (if any) to the
// request context and can lazily create anonymous sessions for routes
// that need one to key the free-message quota.
type SessionLoader struct {
	sessions *services.SessionService
	secure   bool
}

func NewSessionLoader(sessions *services.SessionService, secure bool) *SessionLoader {
	return &SessionLoader{sessions: sessions, secure: secure}
}

// Load resolves an existing session without creating one.
func (l *SessionLoader) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session := l.resolve(r); session != nil {
			r = r.WithContext(context.WithValue(r.Context(), sessionKey, session))
		}
		next.ServeHTTP(w, r)
	})
}

// Ensure resolves the session or creates an anonymous one, setting the
// cookie on the way out.
func (l *SessionLoader) Ensure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := l.resolve(r)
		if session == nil {
			created, cookieValue, err := l.sessions.Create(r.Context(), nil)
			if err != nil {
				log.Printf("session: failed to create anonymous session: %v", err)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", r)
				return
			}
			session = created
			http.SetCookie(w, l.Cookie(cookieValue))
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Cookie builds the session cookie for a signed value.
func (l *SessionLoader) Cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     services.SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   l.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie builds the expired cookie sent on logout.
func (l *SessionLoader) ClearCookie() *http.Cookie {
	cookie := l.Cookie("")
	cookie.MaxAge = -1
	return cookie
}

func (l *SessionLoader) resolve(r *http.Request) *services.Session {
	cookie, err := r.Cookie(services.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	session, err := l.sessions.Resolve(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return session
}

// GetSession extracts the session from the request context, nil when
// anonymous with no session cookie.
func GetSession(ctx context.Context) *services.Session {
	session, _ := ctx.Value(sessionKey).(*services.Session)
	return session
}

// SessionCookieValue reads the raw signed cookie value off a request.
func SessionCookieValue(r *http.Request) string {
	cookie, err := r.Cookie(services.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	})
}
