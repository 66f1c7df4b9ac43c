package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// TransportError means no response reached the caller: timeout, DNS failure,
// refused or reset connection, or a cancelled context. It is retryable.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport failure: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Retryable() bool {
	return true
}

// Timeout reports whether the failure was a deadline rather than a refusal.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// ApplicationError is a well-formed rejection: a non-2xx status or an envelope
// with status false. It is not retried automatically.
type ApplicationError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *ApplicationError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

func (e *ApplicationError) Retryable() bool {
	return false
}

// IsRetryable reports whether err is a failure the caller may safely retry.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}

// IsUnauthorized reports whether err is an application failure with status 401.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// StatusCode returns the status of an application failure, or 0.
func StatusCode(err error) int {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 0
}
