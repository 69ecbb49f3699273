package titan

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a message, report, or vote failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrNoResponseBody indicates the server accepted a request but offered
	// no stream to read.
	ErrNoResponseBody = errors.New("response has no body")

	// ErrRateLimited indicates the message budget is exhausted (HTTP 429).
	ErrRateLimited = errors.New("rate limited")

	// ErrFeatureRestricted indicates the requested feature is not part of the
	// caller's plan (HTTP 402).
	ErrFeatureRestricted = errors.New("feature restricted")

	// ErrSessionRequired indicates the server has no session for the caller
	// (HTTP 401).
	ErrSessionRequired = errors.New("session required")

	// ErrUnavailable indicates the service or its model backend is down
	// (HTTP 503).
	ErrUnavailable = errors.New("service unavailable")

	// ErrTransport is the catch-all for other non-success statuses.
	ErrTransport = errors.New("transport failure")
)

// Action hints the server attaches to limit and restriction errors.
const (
	ActionCreateAccount = "create_account"
	ActionInitSession   = "init_session"
)

// APIError is a non-success response from the chat service. It unwraps to
// the sentinel matching its status code, so callers can use errors.Is.
type APIError struct {
	StatusCode     int
	Message        string
	Type           string
	ActionRequired string
	MessagesUsed   int
	Limit          int
	Remaining      int
	CurrentPlan    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code to a sentinel error.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusPaymentRequired:
		return ErrFeatureRestricted
	case http.StatusUnauthorized:
		return ErrSessionRequired
	case http.StatusServiceUnavailable:
		return ErrUnavailable
	default:
		return ErrTransport
	}
}

// IsCancellation reports whether err stems from a cancelled context.
// Cancellation is never reported to the user as a failure.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
