package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

const (
	appDir      = ".barberterm"
	sessionFile = "session.json"
	keyFile     = "session.key"
	logFile     = "barberterm.log"
	auditDir    = "audit"
	configFile  = "config.yaml"
)

// ErrNoSession is returned when no session has been saved.
var ErrNoSession = errors.New("no saved session")

type Storage struct {
	dataDir string
}

// SavedSession is what survives a restart after signing in.
type SavedSession struct {
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	UserEmail string    `json:"user_email"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type sessionEnvelope struct {
	SavedAt time.Time      `json:"saved_at"`
	Data    *EncryptedData `json:"data"`
}

// DefaultDataDir returns ~/.barberterm.
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, appDir), nil
}

func NewStorage() (*Storage, error) {
	dataDir, err := DefaultDataDir()
	if err != nil {
		return nil, err
	}
	return NewStorageAt(dataDir)
}

func NewStorageAt(dataDir string) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

func (s *Storage) DataDir() string {
	return s.dataDir
}

func (s *Storage) LogPath() string {
	return filepath.Join(s.dataDir, logFile)
}

func (s *Storage) AuditDir() string {
	return filepath.Join(s.dataDir, auditDir)
}

func (s *Storage) ConfigPath() string {
	return filepath.Join(s.dataDir, configFile)
}

func (s *Storage) SaveSession(session *SavedSession) error {
	secret, err := s.loadOrCreateSecret()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	encrypted, err := Encrypt(raw, secret)
	if err != nil {
		return fmt.Errorf("failed to encrypt session: %w", err)
	}

	data, err := json.MarshalIndent(sessionEnvelope{SavedAt: time.Now(), Data: encrypted}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session file: %w", err)
	}

	filePath := filepath.Join(s.dataDir, sessionFile)
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

func (s *Storage) LoadSession() (*SavedSession, error) {
	filePath := filepath.Join(s.dataDir, sessionFile)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var envelope sessionEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session file: %w", err)
	}

	secret, err := s.loadSecret()
	if err != nil {
		return nil, err
	}

	raw, err := Decrypt(envelope.Data, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt session: %w", err)
	}

	var session SavedSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (s *Storage) ClearSession() error {
	filePath := filepath.Join(s.dataDir, sessionFile)
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (s *Storage) loadSecret() ([]byte, error) {
	secret, err := os.ReadFile(filepath.Join(s.dataDir, keyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session key: %w", err)
	}
	if len(secret) != secretLength {
		return nil, fmt.Errorf("session key has unexpected length %d", len(secret))
	}
	return secret, nil
}

func (s *Storage) loadOrCreateSecret() ([]byte, error) {
	secret, err := s.loadSecret()
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, ErrNoSession) {
		return nil, err
	}

	secret, err = newSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dataDir, keyFile), secret, 0600); err != nil {
		return nil, fmt.Errorf("failed to write session key: %w", err)
	}
	return secret, nil
}
