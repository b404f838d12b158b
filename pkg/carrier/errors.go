package carrier

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError indicates a caller input problem: multiple destinations
// in one group, conflicting incoterms, a missing required address field.
// Validation errors are never retried.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrorKind classifies a carrier API error by its HTTP status class.
type ErrorKind string

const (
	// KindBadRequest means the request payload was rejected (400).
	KindBadRequest ErrorKind = "bad_request"
	// KindCredentials means the API key or username/password was
	// rejected (401, 403).
	KindCredentials ErrorKind = "credentials"
	// KindEndpoint means the endpoint or base URL is wrong (404).
	KindEndpoint ErrorKind = "endpoint"
	// KindTransient means the carrier API had a server-side problem
	// (5xx, timeouts). Retrying is a caller decision.
	KindTransient ErrorKind = "transient"
	// KindUnknown covers everything else.
	KindUnknown ErrorKind = "unknown"
)

// ClassifyStatus maps an HTTP status code to an error kind.
func ClassifyStatus(status int) ErrorKind {
	switch {
	case status == 400:
		return KindBadRequest
	case status == 401 || status == 403:
		return KindCredentials
	case status == 404:
		return KindEndpoint
	case status >= 500:
		return KindTransient
	default:
		return KindUnknown
	}
}

// FieldError is one per-field error entry parsed from a carrier error body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError represents a failed carrier API call.
type APIError struct {
	Carrier    string
	StatusCode int
	Kind       ErrorKind
	Message    string
	Fields     []FieldError
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var b strings.Builder
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, "%s error %d (%s): %s", e.Carrier, e.StatusCode, e.Kind, e.Message)
	} else {
		fmt.Fprintf(&b, "%s error (%s): %s", e.Carrier, e.Kind, e.Message)
	}
	for _, f := range e.Fields {
		field := f.Field
		if field == "" {
			field = "error"
		}
		fmt.Fprintf(&b, "; %s: %s", field, f.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for APIError: two API errors match when their
// kinds match.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewAPIError creates an APIError classified from the HTTP status code.
// 5xx errors are marked retryable.
func NewAPIError(carrier string, status int, message string) *APIError {
	kind := ClassifyStatus(status)
	return &APIError{
		Carrier:    carrier,
		StatusCode: status,
		Kind:       kind,
		Message:    message,
		Retryable:  kind == KindTransient,
	}
}

// NewTransportError wraps a transport-level failure (connection refused,
// timeout) as a retryable transient error.
func NewTransportError(carrier string, cause error) *APIError {
	return &APIError{
		Carrier:   carrier,
		Kind:      KindTransient,
		Message:   "carrier API unreachable",
		Retryable: true,
		Cause:     cause,
	}
}

// WithFields attaches per-field error details to the error.
func (e *APIError) WithFields(fields []FieldError) *APIError {
	e.Fields = fields
	return e
}

// WithCause adds a cause to the error.
func (e *APIError) WithCause(err error) *APIError {
	e.Cause = err
	return e
}

// Sentinel errors for common carrier scenarios.
var (
	// ErrCancelNotSupported indicates the carrier API has no
	// cancellation endpoint; shipments must be cancelled via the
	// carrier's web portal.
	ErrCancelNotSupported = errors.New("cancelling shipments is not supported by the carrier API")

	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")

	// ErrEmptyResponse indicates the carrier returned a success status
	// but no shipment data.
	ErrEmptyResponse = errors.New("carrier returned an empty response")
)

// IsRetryable returns true if the error is worth retrying.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return false
}
