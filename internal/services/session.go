package services

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"worldwise-backend/internal/models"
)

// SessionCookieName is the opaque cookie referencing server-side state.
const SessionCookieName = "worldwise_sid"

// sessionTTL is the store default lifetime; nothing refreshes or
// revokes tokens beyond it.
const sessionTTL = 7 * 24 * time.Hour

var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side record behind the cookie. User is nil for
// anonymous sessions, which exist only to key the free-message quota.
type Session struct {
	ID   string       `json:"id"`
	User *models.User `json:"user,omitempty"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.User != nil
}

// SessionStore persists sessions keyed by their random ID.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

// SessionService issues and resolves signed session cookies. The
// cookie value is "<id>.<hmac>" so a forged or tampered ID is rejected
// before the store is ever consulted.
type SessionService struct {
	store  SessionStore
	secret []byte
}

func NewSessionService(store SessionStore, secret string) *SessionService {
	return &SessionService{store: store, secret: []byte(secret)}
}

// Create stores a new session and returns the signed cookie value.
func (s *SessionService) Create(ctx context.Context, user *models.User) (*Session, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &Session{ID: hex.EncodeToString(raw), User: user}
	if err := s.store.Set(ctx, session); err != nil {
		return nil, "", fmt.Errorf("failed to store session: %w", err)
	}
	return session, s.sign(session.ID), nil
}

// Authenticate attaches a user record to an existing session, moving it
// from anonymous to authenticated in place.
func (s *SessionService) Authenticate(ctx context.Context, session *Session, user *models.User) error {
	session.User = user
	return s.store.Set(ctx, session)
}

// Resolve validates a cookie value and loads the session behind it.
func (s *SessionService) Resolve(ctx context.Context, cookieValue string) (*Session, error) {
	id, ok := s.verify(cookieValue)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.store.Get(ctx, id)
}

// Destroy removes the session behind a cookie value, if any.
func (s *SessionService) Destroy(ctx context.Context, cookieValue string) error {
	id, ok := s.verify(cookieValue)
	if !ok {
		return nil
	}
	return s.store.Delete(ctx, id)
}

func (s *SessionService) sign(id string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(id))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return id + "." + sig
}

func (s *SessionService) verify(cookieValue string) (string, bool) {
	id, _, found := strings.Cut(cookieValue, ".")
	if !found || id == "" {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(s.sign(id)), []byte(cookieValue)) != 1 {
		return "", false
	}
	return id, true
}

// RedisSessionStore keeps sessions in Redis with the default TTL.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *RedisSessionStore) Set(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, sessionKey(session.ID), string(data), sessionTTL).Err()
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}

// MemorySessionStore is the fallback when no Redis is configured, and
// the store used by tests. Sessions last until process exit.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

func (m *MemorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *MemorySessionStore) Set(ctx context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
