package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the system.
type ErrorCode string

// Registration and routing error codes
const (
	ErrInvalidConfig      ErrorCode = "INVALID_CONFIG"
	ErrUnsupportedKind    ErrorCode = "UNSUPPORTED_CONNECTION_KIND"
	ErrRegistrationFailed ErrorCode = "REGISTRATION_FAILED"
	ErrHealthCheckFailed  ErrorCode = "HEALTH_CHECK_FAILED"
	ErrAgentNotFound      ErrorCode = "AGENT_NOT_FOUND"
	ErrNoSuitableAgent    ErrorCode = "NO_SUITABLE_AGENT"
	ErrNoSuitableMethod   ErrorCode = "NO_SUITABLE_METHOD"
)

// Invocation and workflow error codes
const (
	ErrInvocationFailed  ErrorCode = "INVOCATION_FAILED"
	ErrUpstreamError     ErrorCode = "UPSTREAM_ERROR"
	ErrDependencyTimeout ErrorCode = "DEPENDENCY_TIMEOUT"
	ErrWorkflowFailed    ErrorCode = "WORKFLOW_FAILED"
	ErrNotExecutable     ErrorCode = "NOT_EXECUTABLE"
)

// Generic error codes
const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrRateLimited    ErrorCode = "RATE_LIMITED"
	ErrTimeout        ErrorCode = "TIMEOUT"
	ErrInternalError  ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	AgentID    string    `json:"agent_id,omitempty"`
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

// WithAgentID tags the error with the agent it concerns.
func (e *Error) WithAgentID(id string) *Error {
	e.AgentID = id
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// CodeOf extracts the error code, or ErrInternalError for plain errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrInternalError
}
