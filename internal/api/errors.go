package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

func NewError(errType ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

func NewNetworkError(message string, cause error) *Error {
	return NewError(ErrNetworkConnection, message, cause)
}

func NewTimeoutError(operation string, timeout time.Duration) *Error {
	if timeout <= 0 {
		return NewError(ErrTimeout, fmt.Sprintf("operation %s timed out", operation), nil)
	}
	return NewError(ErrTimeout,
		fmt.Sprintf("operation %s timed out after %v", operation, timeout), nil)
}

func NewDecodeError(path string, cause error) *Error {
	return NewError(ErrDecode, fmt.Sprintf("failed to decode response from %s", path), cause)
}

// NewStatusError maps a non-2xx response onto an error type. message is the
// backend's own message when it sent one.
func NewStatusError(status int, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}

	var errType ErrorType
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		errType = ErrUnauthorized
	case status == http.StatusNotFound:
		errType = ErrNotFound
	case status == http.StatusTooManyRequests:
		errType = ErrRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		errType = ErrTimeout
	case status >= 500:
		errType = ErrServer
	default:
		errType = ErrBadRequest
	}

	return &Error{
		Type:    errType,
		Message: message,
		Status:  status,
	}
}

func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("request", 0)
	}
	if errors.Is(err, context.Canceled) {
		return NewNetworkError("request canceled", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError("network operation", 0)
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
		return NewTimeoutError("network request", 0)
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host"):
		return NewNetworkError("connection failed", err)
	case strings.Contains(errStr, "too many requests"):
		return NewError(ErrRateLimited, "rate limited", err)
	default:
		return NewNetworkError("unknown network error", err)
	}
}

func (e *Error) IsRetryable() bool {
	switch e.Type {
	case ErrNetworkConnection, ErrTimeout, ErrRateLimited, ErrServer:
		return true
	default:
		return false
	}
}

func (e *Error) UserMessage() string {
	switch e.Type {
	case ErrNetworkConnection:
		return "Could not reach the server. Please check your connection."
	case ErrTimeout:
		return "The server took too long to answer. Please try again."
	case ErrRateLimited:
		return "Too many requests. Please wait a moment and try again."
	case ErrUnauthorized:
		return "Your session is not valid. Please sign in again."
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrBadRequest:
		return "The server rejected the request."
	case ErrServer:
		return "The server is temporarily unavailable."
	case ErrDecode:
		return "The server sent an unexpected response."
	default:
		return "An unexpected error occurred."
	}
}

// IsUnauthorized reports whether err is an API error caused by a missing or
// rejected token.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Type == ErrUnauthorized
}
