package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	DefaultBaseURL    = "http://localhost:3333"
	DefaultTimeout    = 30 * time.Second
	DefaultRetryCount = 3
	DefaultRetryDelay = 2 * time.Second
	DefaultCacheTTL   = 30 * time.Second
	DefaultUserAgent  = "barberterm"

	maxErrorBody = 64 << 10
)

const (
	PathUsers          = "/users"
	PathSessions       = "/sessions"
	PathForgotPassword = "/password/forgot"
	PathResetPassword  = "/password/reset"
	PathMyAppointments = "/appointments/me"
)

type Client struct {
	httpClient *http.Client
	config     Config
	baseURL    *url.URL
	cache      *AppointmentCache
	logger     *log.Logger

	mu     sync.RWMutex
	token  string
	status ServerStatus

	stopCleanup chan struct{}
	closeOnce   sync.Once
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(config Config, opts ...Option) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.RetryCount == 0 {
		config.RetryCount = DefaultRetryCount
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", config.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", config.BaseURL)
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: config.Timeout},
		config:      config,
		baseURL:     base,
		cache:       NewAppointmentCache(config.CacheTTL),
		logger:      log.New(io.Discard),
		stopCleanup: make(chan struct{}),
		status: ServerStatus{
			BaseURL:     base.String(),
			LastChecked: time.Now(),
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	c.cache.StartCleanupRoutine(5*time.Minute, c.stopCleanup)

	return c, nil
}

// SetToken sets the bearer token sent with every request. An empty token
// removes the header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	c.cache.Clear()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token
}

func (c *Client) GetStatus() ServerStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.status
}

func (c *Client) updateStatus(reachable bool, status int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status.Reachable = reachable
	c.status.LastStatus = status
	c.status.LastChecked = time.Now()
}

// Post sends body as JSON and decodes the response into out when out is not
// nil. It issues exactly one request; POSTs are never retried.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Get fetches path and decodes the response into out, retrying failures that
// are worth retrying.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	var lastErr error

	for attempt := 0; attempt < c.config.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ClassifyError(ctx.Err())
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
		}

		err := c.do(ctx, http.MethodGet, path, query, nil, out)
		if err == nil {
			return nil
		}

		lastErr = err
		if apiErr := ClassifyError(err); apiErr != nil && !apiErr.IsRetryable() {
			break
		}
		c.logger.Debug("retrying request", "path", path, "attempt", attempt+1, "err", err)
	}

	return ClassifyError(lastErr)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body for %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.updateStatus(false, 0)
		c.logger.Warn("request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		apiErr := ClassifyError(err)
		apiErr.RequestID = requestID
		return apiErr
	}
	defer resp.Body.Close()

	c.updateStatus(true, resp.StatusCode)
	c.logger.Debug("request done",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := NewStatusError(resp.StatusCode, readErrorMessage(resp.Body))
		apiErr.RequestID = requestID
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		apiErr := NewDecodeError(path, err)
		apiErr.RequestID = requestID
		return apiErr
	}

	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return ""
}

func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*User, error) {
	var user User
	if err := c.Post(ctx, PathUsers, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*Session, error) {
	var session Session
	if err := c.Post(ctx, PathSessions, req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	return c.Post(ctx, PathForgotPassword, req, nil)
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return c.Post(ctx, PathResetPassword, req, nil)
}

// Appointments returns the signed-in user's appointments for day, served from
// the cache while fresh.
func (c *Client) Appointments(ctx context.Context, day time.Time) ([]Appointment, error) {
	if cached, found := c.cache.Get(day); found {
		return cached, nil
	}

	query := url.Values{}
	query.Set("day", strconv.Itoa(day.Day()))
	query.Set("month", strconv.Itoa(int(day.Month())))
	query.Set("year", strconv.Itoa(day.Year()))

	var appointments []Appointment
	if err := c.Get(ctx, PathMyAppointments, query, &appointments); err != nil {
		return nil, err
	}

	c.cache.Set(day, appointments)
	c.logger.Debug("appointments cached", "day", dayKey(day), "count", len(appointments), "cached_days", c.cache.Size())
	return appointments, nil
}

func (c *Client) RefreshAppointments(ctx context.Context, day time.Time) ([]Appointment, error) {
	c.cache.Invalidate(day)
	return c.Appointments(ctx, day)
}

func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
	return nil
}
