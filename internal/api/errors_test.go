package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestNewError(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewError(ErrNetworkConnection, "test message", cause)

	if err.Type != ErrNetworkConnection {
		t.Errorf("Expected type %s, got %s", ErrNetworkConnection, err.Type)
	}
	if err.Message != "test message" {
		t.Errorf("Expected message 'test message', got '%s'", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected error to unwrap to its cause")
	}
}

func TestErrorString(t *testing.T) {
	err := NewError(ErrBadRequest, "bad input", nil)
	if err.Error() != "bad input" {
		t.Errorf("Expected 'bad input', got '%s'", err.Error())
	}

	err = NewError(ErrNetworkConnection, "network failed", errors.New("underlying error"))
	expected := "network failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestNewTimeoutError(t *testing.T) {
	err := NewTimeoutError("sign in", 30*time.Second)
	if err.Type != ErrTimeout {
		t.Errorf("Expected type %s, got %s", ErrTimeout, err.Type)
	}
	if !strings.Contains(err.Message, "sign in") || !strings.Contains(err.Message, "30s") {
		t.Errorf("Unexpected message '%s'", err.Message)
	}
}

func TestNewStatusError(t *testing.T) {
	tests := []struct {
		status   int
		expected ErrorType
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnprocessableEntity, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusGatewayTimeout, ErrTimeout},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusBadGateway, ErrServer},
	}

	for _, test := range tests {
		err := NewStatusError(test.status, "")
		if err.Type != test.expected {
			t.Errorf("For status %d expected type %s, got %s", test.status, test.expected, err.Type)
		}
		if err.Message != http.StatusText(test.status) {
			t.Errorf("For status %d expected default message, got '%s'", test.status, err.Message)
		}
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		input    error
		expected ErrorType
	}{
		{nil, ErrorType("")},
		{errors.New("timeout occurred"), ErrTimeout},
		{errors.New("deadline exceeded"), ErrTimeout},
		{context.DeadlineExceeded, ErrTimeout},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), ErrTimeout},
		{errors.New("connection refused"), ErrNetworkConnection},
		{errors.New("no such host"), ErrNetworkConnection},
		{errors.New("too many requests"), ErrRateLimited},
		{fmt.Errorf("wrapped: %w", NewStatusError(http.StatusNotFound, "")), ErrNotFound},
		{errors.New("unknown error"), ErrNetworkConnection},
	}

	for _, test := range tests {
		result := ClassifyError(test.input)

		if test.input == nil {
			if result != nil {
				t.Errorf("Expected nil for nil input, got %v", result)
			}
			continue
		}

		if result.Type != test.expected {
			t.Errorf("For error '%s', expected type %s, got %s", test.input.Error(), test.expected, result.Type)
		}
	}
}

func TestClassifyNetError(t *testing.T) {
	result := ClassifyError(&mockNetError{timeout: true})
	if result.Type != ErrTimeout {
		t.Errorf("Expected timeout error for net.Error with timeout, got %s", result.Type)
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []ErrorType{ErrNetworkConnection, ErrTimeout, ErrRateLimited, ErrServer}
	nonRetryable := []ErrorType{ErrUnauthorized, ErrNotFound, ErrBadRequest, ErrDecode}

	for _, errType := range retryable {
		err := &Error{Type: errType}
		if !err.IsRetryable() {
			t.Errorf("Expected error type %s to be retryable", errType)
		}
	}

	for _, errType := range nonRetryable {
		err := &Error{Type: errType}
		if err.IsRetryable() {
			t.Errorf("Expected error type %s to not be retryable", errType)
		}
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		errType  ErrorType
		expected string
	}{
		{ErrNetworkConnection, "Could not reach the server"},
		{ErrTimeout, "took too long"},
		{ErrRateLimited, "Too many requests"},
		{ErrUnauthorized, "sign in again"},
		{ErrServer, "temporarily unavailable"},
		{ErrorType("unknown"), "An unexpected error occurred"},
	}

	for _, test := range tests {
		err := &Error{Type: test.errType}
		if !strings.Contains(err.UserMessage(), test.expected) {
			t.Errorf("For error type %s, expected message to contain '%s', got '%s'", test.errType, test.expected, err.UserMessage())
		}
	}
}

type mockNetError struct {
	timeout bool
}

func (e *mockNetError) Error() string {
	return "mock network error"
}

func (e *mockNetError) Timeout() bool {
	return e.timeout
}

func (e *mockNetError) Temporary() bool {
	return false
}
