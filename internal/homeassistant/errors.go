package homeassistant

import (
	"errors"
	"fmt"
)

// ProtocolError indicates that the websocket greeting was not the expected
// message kind. The connection is discarded and re-established on the next
// token request.
type ProtocolError struct {
	// Expected is the message type we were waiting for.
	Expected string

	// Got is the message type actually received.
	Got string
}

// Error implements the error interface for ProtocolError.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unexpected websocket message: expected %q, got %q", e.Expected, e.Got)
}

// IsProtocolError checks if an error is or wraps a ProtocolError.
func IsProtocolError(err error) bool {
	var protocolErr *ProtocolError
	return errors.As(err, &protocolErr)
}

// AuthenticationError indicates that Home Assistant rejected the long-lived
// access token during the handshake. The connection is discarded.
type AuthenticationError struct {
	// Message is the failure detail reported by Home Assistant, if any.
	Message string
}

// Error implements the error interface for AuthenticationError.
func (e *AuthenticationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("home assistant rejected authentication: %s", e.Message)
	}
	return "home assistant rejected authentication"
}

// IsAuthenticationError checks if an error is or wraps an AuthenticationError.
func IsAuthenticationError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// CredentialRenewalError indicates that the supervisor refused to mint a new
// ingress session. The cached token is left stale, so the next token request
// retries the renewal.
type CredentialRenewalError struct {
	// Message is the failure detail reported by the supervisor, if any.
	Message string
}

// Error implements the error interface for CredentialRenewalError.
func (e *CredentialRenewalError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("failed to renew ingress session: %s", e.Message)
	}
	return "failed to renew ingress session"
}

// IsCredentialRenewalError checks if an error is or wraps a CredentialRenewalError.
func IsCredentialRenewalError(err error) bool {
	var renewalErr *CredentialRenewalError
	return errors.As(err, &renewalErr)
}
