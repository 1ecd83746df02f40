package types

import "fmt"

// ErrorCode represents a unified error code across the framework.
type ErrorCode string

// LLM error codes
const (
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"
	ErrAuthentication      ErrorCode = "AUTHENTICATION"
	ErrUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrForbidden           ErrorCode = "FORBIDDEN"
	ErrRateLimit           ErrorCode = "RATE_LIMIT"
	ErrRateLimited         ErrorCode = "RATE_LIMITED"
	ErrQuotaExceeded       ErrorCode = "QUOTA_EXCEEDED"
	ErrModelNotFound       ErrorCode = "MODEL_NOT_FOUND"
	ErrContextTooLong      ErrorCode = "CONTEXT_TOO_LONG"
	ErrContentFiltered     ErrorCode = "CONTENT_FILTERED"
	ErrToolValidation      ErrorCode = "TOOL_VALIDATION"
	ErrRoutingUnavailable  ErrorCode = "ROUTING_UNAVAILABLE"
	ErrModelOverloaded     ErrorCode = "MODEL_OVERLOADED"
	ErrUpstreamTimeout     ErrorCode = "UPSTREAM_TIMEOUT"
	ErrTimeout             ErrorCode = "TIMEOUT"
	ErrUpstreamError       ErrorCode = "UPSTREAM_ERROR"
	ErrInternalError       ErrorCode = "INTERNAL_ERROR"
	ErrServiceUnavailable  ErrorCode = "SERVICE_UNAVAILABLE"
	ErrProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
)

// Kind is the closed error taxonomy of the query engine core (spec-level
// kinds, not concrete exception types). Most kinds are handled internally and
// never reach the outer caller; see each Kind's doc comment.
type Kind string

const (
	// KindInvalidInput: query empty/malformed, or a required entity could
	// not be extracted. Never propagates — surfaced as a successful result
	// whose summary explains the issue.
	KindInvalidInput Kind = "invalid_input"
	// KindProviderUnavailable: one LLM or external API is down/slow.
	// Handled internally by fallback or skip; not surfaced unless every
	// option is exhausted.
	KindProviderUnavailable Kind = "provider_unavailable"
	// KindAllProvidersFailed: terminal version of KindProviderUnavailable.
	// Surfaced to the caller as an error result.
	KindAllProvidersFailed Kind = "all_providers_failed"
	// KindSandboxViolation: generated code failed validation. Surfaced
	// inside CodeResult with Success=false.
	KindSandboxViolation Kind = "sandbox_violation"
	// KindSandboxTimeout: execution exceeded its wall-clock cap. Same
	// treatment as KindSandboxViolation.
	KindSandboxTimeout Kind = "sandbox_timeout"
	// KindCancelled: deadline or cancellation observed mid-flight. Partial
	// results are discarded.
	KindCancelled Kind = "cancelled"
	// KindInternal: unexpected programming error. Surfaced as a generic
	// error result; the only other kind allowed to propagate besides
	// KindAllProvidersFailed.
	KindInternal Kind = "internal"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Kind       Kind      `json:"kind,omitempty"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// WithKind sets the error's taxonomy kind.
func (e *Error) WithKind(kind Kind) *Error {
	e.Kind = kind
	return e
}

// GetErrorKind extracts the taxonomy kind from an error, if any.
func GetErrorKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
