package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for failure modes that carry no provider context.
var (
	// ErrAuthenticationFailed is returned on a local username/password
	// mismatch. No detail beyond the message ever reaches the client.
	ErrAuthenticationFailed = errors.New("incorrect username or password")

	// ErrTimestampMissing is returned when the timestamp authority response
	// carries no timeStampTokenB64 field.
	ErrTimestampMissing = errors.New("timestamp response carries no token")

	// ErrSessionTokenMissing is returned when no session token could be
	// extracted from the provider login response by any known strategy.
	ErrSessionTokenMissing = errors.New("no session token in provider login response")

	// ErrNoStoredSession is returned when a document call is attempted
	// before a provider session exists for the user.
	ErrNoStoredSession = errors.New("no provider session stored: authenticate with the documents provider first")
)

// ProviderErrorKind classifies outbound call failures. Callers of the
// forwarders never see transport-level error types, only these kinds.
type ProviderErrorKind string

const (
	// ProviderTimeout means the call exceeded its configured deadline.
	ProviderTimeout ProviderErrorKind = "timeout"
	// ProviderTransport means a connection-level failure (DNS, TLS, reset).
	ProviderTransport ProviderErrorKind = "transport"
	// ProviderBadStatus means the provider answered with a non-200 status.
	ProviderBadStatus ProviderErrorKind = "bad_status"
	// ProviderRejected means the ERP provider signalled a logical failure
	// inside a 200 envelope (ok=false).
	ProviderRejected ProviderErrorKind = "rejected"
)

// ProviderError is the normalized form of any outbound call failure.
// Body is truncated before storage so logs stay bounded and never carry
// full provider payloads.
type ProviderError struct {
	Kind        ProviderErrorKind
	URL         string
	Status      int    // HTTP status, when one was received
	Code        string // provider error code, for Rejected
	Description string // provider error description, for Rejected
	Body        string // truncated response body, for BadStatus
	Err         error  // underlying transport error, for Timeout/Transport
}

func (e *ProviderError) Error() string {
	switch e.Kind {
	case ProviderTimeout:
		return fmt.Sprintf("%s: request timed out", e.URL)
	case ProviderTransport:
		return fmt.Sprintf("%s: %v", e.URL, e.Err)
	case ProviderBadStatus:
		return fmt.Sprintf("%s returned status %d: %s", e.URL, e.Status, e.Body)
	case ProviderRejected:
		return fmt.Sprintf("provider rejected request: %s - %s", e.Code, e.Description)
	default:
		return fmt.Sprintf("%s: provider error", e.URL)
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ValidationError reports a request payload that violates a documented
// constraint before any outbound call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
