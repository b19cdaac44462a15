package security

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"gobarber/barberterm/internal/api"
	"gobarber/barberterm/internal/storage"
)

var (
	ErrNoSession      = errors.New("not signed in")
	ErrSessionExpired = errors.New("session expired")
)

// SessionStore persists the signed-in session between runs.
type SessionStore interface {
	SaveSession(*storage.SavedSession) error
	LoadSession() (*storage.SavedSession, error)
	ClearSession() error
}

// TokenHolder receives the bearer token of the current session.
type TokenHolder interface {
	SetToken(token string)
}

type SessionManager struct {
	session       *AuthSession
	store         SessionStore
	tokens        TokenHolder
	config        *SessionConfig
	logger        *log.Logger
	mu            sync.RWMutex
	cleanupTicker *time.Ticker
	stopCleanup   chan bool
	shutdownOnce  sync.Once
}

type AuthSession struct {
	User         api.User
	Token        string
	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time
}

type SessionConfig struct {
	InactivityLimit time.Duration
	CleanupInterval time.Duration
	ExpiringWindow  time.Duration
}

func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		InactivityLimit: 24 * time.Hour,
		CleanupInterval: 30 * time.Second,
		ExpiringWindow:  5 * time.Minute,
	}
}

type SessionOption func(*SessionManager)

func WithTokenHolder(t TokenHolder) SessionOption {
	return func(sm *SessionManager) {
		sm.tokens = t
	}
}

func WithSessionLogger(logger *log.Logger) SessionOption {
	return func(sm *SessionManager) {
		if logger != nil {
			sm.logger = logger.With("component", "session")
		}
	}
}

// NewSessionManager starts the expiry routine; call Shutdown to stop it.
// A nil store keeps the session in memory only.
func NewSessionManager(store SessionStore, config *SessionConfig, opts ...SessionOption) *SessionManager {
	if config == nil {
		config = DefaultSessionConfig()
	}

	sm := &SessionManager{
		store:       store,
		config:      config,
		logger:      log.New(io.Discard),
		stopCleanup: make(chan bool),
	}
	for _, opt := range opts {
		opt(sm)
	}

	sm.startCleanupRoutine()
	return sm
}

// Begin replaces any current session with one for the given sign-in result
// and persists it.
func (sm *SessionManager) Begin(result api.Session) (*AuthSession, error) {
	if result.Token == "" {
		return nil, fmt.Errorf("sign-in result has no token")
	}

	now := time.Now()
	session := &AuthSession{
		User:         result.User,
		Token:        result.Token,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(sm.config.InactivityLimit),
	}

	sm.mu.Lock()
	sm.session = session
	sm.mu.Unlock()

	sm.setToken(session.Token)

	if err := sm.persist(session); err != nil {
		return copySession(session), err
	}

	sm.logger.Info("session started", "user", session.User.ID)
	return copySession(session), nil
}

// Restore loads the persisted session. Expired sessions are cleared and
// reported as ErrSessionExpired.
func (sm *SessionManager) Restore() (*AuthSession, error) {
	if sm.store == nil {
		return nil, ErrNoSession
	}

	saved, err := sm.store.LoadSession()
	if err != nil {
		if errors.Is(err, storage.ErrNoSession) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	if saved.Token == "" {
		return nil, ErrNoSession
	}

	if time.Now().After(saved.ExpiresAt) {
		if err := sm.store.ClearSession(); err != nil {
			sm.logger.Warn("failed to clear expired session", "err", err)
		}
		return nil, ErrSessionExpired
	}

	session := &AuthSession{
		User: api.User{
			ID:    saved.UserID,
			Name:  saved.UserName,
			Email: saved.UserEmail,
		},
		Token:        saved.Token,
		CreatedAt:    saved.CreatedAt,
		LastActivity: time.Now(),
		ExpiresAt:    saved.ExpiresAt,
	}

	sm.mu.Lock()
	sm.session = session
	sm.mu.Unlock()

	sm.setToken(session.Token)
	sm.logger.Info("session restored", "user", session.User.ID)
	return copySession(session), nil
}

func (sm *SessionManager) Current() (*AuthSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if sm.session == nil || time.Now().After(sm.session.ExpiresAt) {
		return nil, false
	}

	return copySession(sm.session), true
}

// Touch records activity and pushes the expiry forward.
func (sm *SessionManager) Touch() error {
	sm.mu.Lock()
	session := sm.session
	if session == nil {
		sm.mu.Unlock()
		return ErrNoSession
	}
	if time.Now().After(session.ExpiresAt) {
		sm.mu.Unlock()
		return ErrSessionExpired
	}

	now := time.Now()
	session.LastActivity = now
	session.ExpiresAt = now.Add(sm.config.InactivityLimit)
	snapshot := copySession(session)
	sm.mu.Unlock()

	return sm.persist(snapshot)
}

// Close ends the session and removes it from the store.
func (sm *SessionManager) Close() error {
	sm.mu.Lock()
	if sm.session != nil {
		sm.session.Token = ""
	}
	sm.session = nil
	sm.mu.Unlock()

	sm.setToken("")

	if sm.store != nil {
		if err := sm.store.ClearSession(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
	}

	sm.logger.Info("session closed")
	return nil
}

func (sm *SessionManager) Status() SessionStatus {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if sm.session == nil {
		return SessionStatusInactive
	}

	remaining := time.Until(sm.session.ExpiresAt)
	if remaining <= 0 {
		return SessionStatusExpired
	}
	if remaining < sm.config.ExpiringWindow {
		return SessionStatusExpiring
	}

	return SessionStatusActive
}

func (sm *SessionManager) TimeRemaining() time.Duration {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if sm.session == nil {
		return 0
	}

	remaining := time.Until(sm.session.ExpiresAt)
	if remaining < 0 {
		return 0
	}

	return remaining
}

func (sm *SessionManager) Shutdown() {
	sm.shutdownOnce.Do(func() {
		close(sm.stopCleanup)
		if sm.cleanupTicker != nil {
			sm.cleanupTicker.Stop()
		}
	})
}

func (sm *SessionManager) persist(session *AuthSession) error {
	if sm.store == nil {
		return nil
	}

	err := sm.store.SaveSession(&storage.SavedSession{
		UserID:    session.User.ID,
		UserName:  session.User.Name,
		UserEmail: session.User.Email,
		Token:     session.Token,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

func (sm *SessionManager) setToken(token string) {
	if sm.tokens != nil {
		sm.tokens.SetToken(token)
	}
}

func (sm *SessionManager) startCleanupRoutine() {
	sm.cleanupTicker = time.NewTicker(sm.config.CleanupInterval)

	go func() {
		for {
			select {
			case <-sm.cleanupTicker.C:
				sm.expireSession()
			case <-sm.stopCleanup:
				return
			}
		}
	}()
}

func (sm *SessionManager) expireSession() {
	sm.mu.Lock()
	expired := sm.session != nil && time.Now().After(sm.session.ExpiresAt)
	if expired {
		sm.session.Token = ""
		sm.session = nil
	}
	sm.mu.Unlock()

	if !expired {
		return
	}

	sm.setToken("")
	if sm.store != nil {
		if err := sm.store.ClearSession(); err != nil {
			sm.logger.Warn("failed to clear expired session", "err", err)
		}
	}
	sm.logger.Info("session expired")
}

func copySession(s *AuthSession) *AuthSession {
	c := *s
	return &c
}

type SessionStatus string

const (
	SessionStatusActive   SessionStatus = "active"
	SessionStatusExpiring SessionStatus = "expiring"
	SessionStatusExpired  SessionStatus = "expired"
	SessionStatusInactive SessionStatus = "inactive"
)
