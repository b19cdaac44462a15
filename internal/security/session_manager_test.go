package security

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gobarber/barberterm/internal/api"
	"gobarber/barberterm/internal/storage"
)

type fakeTokens struct {
	mu    sync.Mutex
	token string
}

func (f *fakeTokens) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeTokens) get() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func newTestStore(t *testing.T) *storage.Storage {
	t.Helper()

	s, err := storage.NewStorageAt(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	return s
}

var testSignIn = api.Session{
	User:  api.User{ID: "u1", Name: "Ana", Email: "ana@example.com"},
	Token: "jwt-token",
}

func TestSessionManager_Begin(t *testing.T) {
	tokens := &fakeTokens{}
	sm := NewSessionManager(newTestStore(t), nil, WithTokenHolder(tokens))
	defer sm.Shutdown()

	session, err := sm.Begin(testSignIn)
	if err != nil {
		t.Fatalf("Failed to begin session: %v", err)
	}

	if session.User.ID != "u1" {
		t.Errorf("Expected user ID u1, got %s", session.User.ID)
	}
	if session.Token != "jwt-token" {
		t.Errorf("Expected token jwt-token, got %s", session.Token)
	}
	if time.Until(session.ExpiresAt) <= 0 {
		t.Error("Session should not be expired")
	}
	if tokens.get() != "jwt-token" {
		t.Errorf("Expected token holder to receive the token, got %q", tokens.get())
	}
	if sm.Status() != SessionStatusActive {
		t.Errorf("Expected status active, got %s", sm.Status())
	}
}

func TestSessionManager_BeginRequiresToken(t *testing.T) {
	sm := NewSessionManager(nil, nil)
	defer sm.Shutdown()

	if _, err := sm.Begin(api.Session{User: testSignIn.User}); err == nil {
		t.Error("Expected error for a sign-in result without token")
	}
	if _, ok := sm.Current(); ok {
		t.Error("No session should exist")
	}
}

type failingStore struct{}

func (failingStore) SaveSession(*storage.SavedSession) error {
	return errors.New("disk full")
}

func (failingStore) LoadSession() (*storage.SavedSession, error) {
	return nil, storage.ErrNoSession
}

func (failingStore) ClearSession() error { return nil }

func TestSessionManager_BeginPersistFailureReturnsCopy(t *testing.T) {
	sm := NewSessionManager(failingStore{}, nil)
	defer sm.Shutdown()

	session, err := sm.Begin(testSignIn)
	if err == nil {
		t.Fatal("Expected the persist error to be returned")
	}
	if session == nil {
		t.Fatal("Expected the session to be returned with the persist error")
	}

	session.Token = "tampered"
	session.User.ID = "someone-else"

	current, ok := sm.Current()
	if !ok {
		t.Fatal("Session should still be active in memory")
	}
	if current.Token != "jwt-token" || current.User.ID != "u1" {
		t.Errorf("Expected manager state to be unaffected, got token %q user %q", current.Token, current.User.ID)
	}
}

func TestSessionManager_Restore(t *testing.T) {
	store := newTestStore(t)

	first := NewSessionManager(store, nil)
	if _, err := first.Begin(testSignIn); err != nil {
		t.Fatalf("Failed to begin session: %v", err)
	}
	first.Shutdown()

	tokens := &fakeTokens{}
	second := NewSessionManager(store, nil, WithTokenHolder(tokens))
	defer second.Shutdown()

	session, err := second.Restore()
	if err != nil {
		t.Fatalf("Failed to restore session: %v", err)
	}
	if session.User.Email != "ana@example.com" {
		t.Errorf("Expected restored email ana@example.com, got %s", session.User.Email)
	}
	if tokens.get() != "jwt-token" {
		t.Errorf("Expected restored token to reach the token holder, got %q", tokens.get())
	}
}

func TestSessionManager_RestoreWithoutSession(t *testing.T) {
	sm := NewSessionManager(newTestStore(t), nil)
	defer sm.Shutdown()

	if _, err := sm.Restore(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}
}

func TestSessionManager_RestoreExpired(t *testing.T) {
	store := newTestStore(t)

	past := time.Now().Add(-2 * time.Hour)
	err := store.SaveSession(&storage.SavedSession{
		UserID:    "u1",
		Token:     "old",
		CreatedAt: past,
		ExpiresAt: past.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	sm := NewSessionManager(store, nil)
	defer sm.Shutdown()

	if _, err := sm.Restore(); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Expected ErrSessionExpired, got %v", err)
	}
	if _, err := store.LoadSession(); !errors.Is(err, storage.ErrNoSession) {
		t.Errorf("Expected expired session to be cleared, got %v", err)
	}
}

func TestSessionManager_Touch(t *testing.T) {
	sm := NewSessionManager(nil, nil)
	defer sm.Shutdown()

	if err := sm.Touch(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession before sign-in, got %v", err)
	}

	session, err := sm.Begin(testSignIn)
	if err != nil {
		t.Fatalf("Failed to begin session: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if err := sm.Touch(); err != nil {
		t.Fatalf("Failed to touch session: %v", err)
	}

	current, ok := sm.Current()
	if !ok {
		t.Fatal("Session should exist")
	}
	if !current.ExpiresAt.After(session.ExpiresAt) {
		t.Error("Touch should push the expiry forward")
	}
}

func TestSessionManager_Close(t *testing.T) {
	store := newTestStore(t)
	tokens := &fakeTokens{}
	sm := NewSessionManager(store, nil, WithTokenHolder(tokens))
	defer sm.Shutdown()

	if _, err := sm.Begin(testSignIn); err != nil {
		t.Fatalf("Failed to begin session: %v", err)
	}

	if err := sm.Close(); err != nil {
		t.Fatalf("Failed to close session: %v", err)
	}

	if _, ok := sm.Current(); ok {
		t.Error("Session should not exist after close")
	}
	if tokens.get() != "" {
		t.Errorf("Expected token to be cleared, got %q", tokens.get())
	}
	if sm.Status() != SessionStatusInactive {
		t.Errorf("Expected status inactive, got %s", sm.Status())
	}
	if _, err := store.LoadSession(); !errors.Is(err, storage.ErrNoSession) {
		t.Errorf("Expected stored session to be removed, got %v", err)
	}
}

func TestSessionManager_Expiry(t *testing.T) {
	tokens := &fakeTokens{}
	sm := NewSessionManager(nil, &SessionConfig{
		InactivityLimit: 50 * time.Millisecond,
		CleanupInterval: 10 * time.Millisecond,
		ExpiringWindow:  40 * time.Millisecond,
	}, WithTokenHolder(tokens))
	defer sm.Shutdown()

	if _, err := sm.Begin(testSignIn); err != nil {
		t.Fatalf("Failed to begin session: %v", err)
	}

	if sm.Status() != SessionStatusActive {
		t.Errorf("Expected status active, got %s", sm.Status())
	}

	time.Sleep(200 * time.Millisecond)

	if _, ok := sm.Current(); ok {
		t.Error("Session should have expired")
	}
	if sm.Status() != SessionStatusInactive {
		t.Errorf("Expected cleanup to remove the session, got %s", sm.Status())
	}
	if tokens.get() != "" {
		t.Errorf("Expected token to be cleared on expiry, got %q", tokens.get())
	}
}

func TestSessionManager_TimeRemaining(t *testing.T) {
	sm := NewSessionManager(nil, nil)
	defer sm.Shutdown()

	if sm.TimeRemaining() != 0 {
		t.Errorf("Expected 0 without a session, got %v", sm.TimeRemaining())
	}

	if _, err := sm.Begin(testSignIn); err != nil {
		t.Fatalf("Failed to begin session: %v", err)
	}

	remaining := sm.TimeRemaining()
	if remaining <= 0 || remaining > DefaultSessionConfig().InactivityLimit {
		t.Errorf("Unexpected time remaining: %v", remaining)
	}
}

func TestSessionManager_ShutdownTwice(t *testing.T) {
	sm := NewSessionManager(nil, nil)
	sm.Shutdown()
	sm.Shutdown()
}
