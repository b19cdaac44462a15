package api

import (
	"sync"
	"time"
)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryDelay time.Duration
	CacheTTL   time.Duration
	UserAgent  string
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the body returned by POST /sessions.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Appointment struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"provider_id"`
	UserID     string    `json:"user_id"`
	Date       time.Time `json:"date"`
	User       *User     `json:"user,omitempty"`
}

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
	Token                string `json:"token"`
}

// errorBody is the JSON shape the backend uses for failures.
type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type AppointmentCache struct {
	days map[string]*cachedDay
	mu   sync.RWMutex
	ttl  time.Duration
}

type cachedDay struct {
	appointments []Appointment
	lastUpdated  time.Time
}

type ErrorType string

const (
	ErrNetworkConnection ErrorType = "network_connection"
	ErrTimeout           ErrorType = "timeout"
	ErrRateLimited       ErrorType = "rate_limited"
	ErrUnauthorized      ErrorType = "unauthorized"
	ErrNotFound          ErrorType = "not_found"
	ErrBadRequest        ErrorType = "bad_request"
	ErrServer            ErrorType = "server"
	ErrDecode            ErrorType = "decode"
)

type Error struct {
	Type      ErrorType
	Message   string
	Status    int
	RequestID string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

type ServerStatus struct {
	Reachable   bool
	BaseURL     string
	LastChecked time.Time
	LastStatus  int
}
