package grocy

import (
	"errors"
	"fmt"
)

// UpstreamError describes a failed call to the Grocy API with enough context
// to diagnose it without re-querying the network.
//
// Transient errors (5xx responses and network-level faults) are retried up
// to the configured attempt budget before being surfaced. Permanent errors
// are surfaced immediately without retry: 4xx responses (a malformed
// request), and 2xx responses whose body is not valid JSON (a broken
// upstream that a retry cannot repair).
type UpstreamError struct {
	// Method is the HTTP method of the failed call.
	Method string

	// URL is the full request URL.
	URL string

	// StatusCode is the HTTP status, or 0 for network-level faults.
	StatusCode int

	// Body is the response body, if it could be read.
	Body string

	// Transient reports whether the fault is eligible for retry.
	Transient bool

	// Err is the underlying transport error for network-level faults.
	Err error
}

// Error implements the error interface for UpstreamError.
func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("grocy request failed: %s %s: %v", e.Method, e.URL, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("grocy request failed: %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("grocy request failed: %s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// Unwrap exposes the underlying transport error, if any.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsTransient checks if an error is or wraps a retryable UpstreamError.
func IsTransient(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr) && upstreamErr.Transient
}

// IsPermanent checks if an error is or wraps a non-retryable UpstreamError.
func IsPermanent(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr) && !upstreamErr.Transient
}
