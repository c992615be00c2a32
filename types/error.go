package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the node library.
type ErrorCode string

// Configuration and validation error codes.
// These are local, deterministic failures: they are never retried and must
// carry enough detail for the user to fix the input.
const (
	// ErrConfiguration indicates that no usable credential source could be
	// resolved from the configuration bundle.
	ErrConfiguration ErrorCode = "CONFIGURATION"
	// ErrInvalidMedia indicates a malformed media payload (empty bytes or an
	// unrecognizable MIME type), detected before any network interaction.
	ErrInvalidMedia ErrorCode = "INVALID_MEDIA"
	// ErrInvalidCount indicates a negative item count passed to the grid
	// allocator. This is a programming error on the caller's side.
	ErrInvalidCount ErrorCode = "INVALID_COUNT"
	// ErrInvalidConfiguration indicates allocator misuse such as a column
	// width below one.
	ErrInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
)

// Node execution error codes.
const (
	ErrNodeExecution    ErrorCode = "NODE_EXECUTION"
	ErrGeneration       ErrorCode = "GENERATION"
	ErrUnsupportedMedia ErrorCode = "UNSUPPORTED_MEDIA"
	// ErrUploadFailed is internal to the media layer: storage failures are
	// absorbed into the inline fallback and never surface to node callers.
	ErrUploadFailed ErrorCode = "UPLOAD_FAILED"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Node      string    `json:"node,omitempty"`
	Cause     error     `json:"-"`
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

// Errorf creates a new Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithNode tags the error with the node that produced it.
func (e *Error) WithNode(node string) *Error {
	e.Node = node
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

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}
