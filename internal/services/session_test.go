package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"worldwise-backend/internal/models"
)

func TestSessionService_CreateAndResolve(t *testing.T) {
	svc := NewSessionService(NewMemorySessionStore(), "test-secret")
	user := &models.User{ID: "g-123", DisplayName: "Test User", Email: "t@t.com"}

	session, cookieValue, err := svc.Create(context.Background(), user)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if session.ID == "" {
		t.Fatal("Expected non-empty session ID")
	}
	if !strings.Contains(cookieValue, ".") {
		t.Errorf("Expected signed cookie value, got %q", cookieValue)
	}

	resolved, err := svc.Resolve(context.Background(), cookieValue)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !resolved.Authenticated() {
		t.Fatal("Expected authenticated session")
	}
	if resolved.User.ID != "g-123" {
		t.Errorf("Expected user g-123, got %q", resolved.User.ID)
	}
}

func TestSessionService_AnonymousSession(t *testing.T) {
	svc := NewSessionService(NewMemorySessionStore(), "test-secret")

	session, cookieValue, err := svc.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if session.Authenticated() {
		t.Error("Expected anonymous session")
	}

	resolved, err := svc.Resolve(context.Background(), cookieValue)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Authenticated() {
		t.Error("Expected resolved session to stay anonymous")
	}
}

func TestSessionService_Authenticate_UpgradesInPlace(t *testing.T) {
	svc := NewSessionService(NewMemorySessionStore(), "test-secret")

	session, cookieValue, _ := svc.Create(context.Background(), nil)
	user := &models.User{ID: "g-123", DisplayName: "Test User"}
	if err := svc.Authenticate(context.Background(), session, user); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	resolved, err := svc.Resolve(context.Background(), cookieValue)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !resolved.Authenticated() {
		t.Fatal("Expected session to be authenticated after upgrade")
	}
	if resolved.ID != session.ID {
		t.Errorf("Expected session ID to survive upgrade, got %q vs %q", resolved.ID, session.ID)
	}
}

func TestSessionService_RejectsTamperedCookies(t *testing.T) {
	svc := NewSessionService(NewMemorySessionStore(), "test-secret")
	_, cookieValue, _ := svc.Create(context.Background(), &models.User{ID: "g-123"})

	tests := []struct {
		name   string
		cookie string
	}{
		{"flipped ID byte", "f" + cookieValue[1:]},
		{"truncated signature", cookieValue[:len(cookieValue)-2]},
		{"no separator", strings.ReplaceAll(cookieValue, ".", "")},
		{"empty value", ""},
		{"garbage", "not-a-session"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Resolve(context.Background(), tc.cookie); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Expected ErrSessionNotFound, got %v", err)
			}
		})
	}
}

func TestSessionService_Destroy(t *testing.T) {
	svc := NewSessionService(NewMemorySessionStore(), "test-secret")
	_, cookieValue, _ := svc.Create(context.Background(), &models.User{ID: "g-123"})

	if err := svc.Destroy(context.Background(), cookieValue); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), cookieValue); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after destroy, got %v", err)
	}
}
