// Package errors provides error classification for the fetch and
// browser collaborators. The extraction engine itself never retries;
// retry policy lives entirely with the collaborators that talk to the
// network.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorType categorizes errors for handling decisions.
type ErrorType int

const (
	// Unknown is an uncategorized error.
	Unknown ErrorType = iota
	// Network represents network-related errors (DNS, connection).
	Network
	// Timeout represents timeout errors.
	Timeout
	// RateLimit represents rate limiting (429) errors.
	RateLimit
	// Auth represents authentication/authorization errors (401, 403).
	Auth
	// NotFound represents 404 errors.
	NotFound
	// ServerError represents 5xx errors.
	ServerError
	// Browser represents browser/CDP errors.
	Browser
	// Cancelled represents context cancellation.
	Cancelled
)

// String returns the string representation of ErrorType.
func (t ErrorType) String() string {
	switch t {
	case Network:
		return "network"
	case Timeout:
		return "timeout"
	case RateLimit:
		return "rate_limit"
	case Auth:
		return "auth"
	case NotFound:
		return "not_found"
	case ServerError:
		return "server_error"
	case Browser:
		return "browser"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsRetryable returns whether errors of this type should be retried.
func (t ErrorType) IsRetryable() bool {
	switch t {
	case Network, Timeout, RateLimit, ServerError:
		return true
	default:
		return false
	}
}

// FetchError is a categorized failure from a collaborator operation.
type FetchError struct {
	Type       ErrorType
	URL        string
	Operation  string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error during %s on %s: %v",
			e.Type.String(), e.Operation, e.URL, e.Cause)
	}
	return fmt.Sprintf("%s error during %s on %s (status %d)",
		e.Type.String(), e.Operation, e.URL, e.StatusCode)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the failure is worth retrying.
func (e *FetchError) Retryable() bool {
	return e.Type.IsRetryable()
}

// New creates a FetchError wrapping a cause.
func New(t ErrorType, operation, url string, cause error) *FetchError {
	return &FetchError{Type: t, Operation: operation, URL: url, Cause: cause}
}

// FromStatus classifies an HTTP status code. Returns nil for statuses
// that are not failures from the fetcher's point of view.
func FromStatus(operation, url string, status int) *FetchError {
	var t ErrorType
	switch {
	case status == 429:
		t = RateLimit
	case status == 401 || status == 403:
		t = Auth
	case status == 404:
		t = NotFound
	case status >= 500:
		t = ServerError
	default:
		return nil
	}
	return &FetchError{Type: t, Operation: operation, URL: url, StatusCode: status}
}

// Classify categorizes an arbitrary error from a network operation.
func Classify(operation, url string, err error) *FetchError {
	if err == nil {
		return nil
	}

	t := Unknown
	switch {
	case errors.Is(err, context.Canceled):
		t = Cancelled
	case errors.Is(err, context.DeadlineExceeded):
		t = Timeout
	default:
		var netErr net.Error
		if errors.As(err, &netErr) {
			if netErr.Timeout() {
				t = Timeout
			} else {
				t = Network
			}
		} else if strings.Contains(err.Error(), "connection refused") ||
			strings.Contains(err.Error(), "no such host") {
			t = Network
		}
	}

	return &FetchError{Type: t, Operation: operation, URL: url, Cause: err}
}
