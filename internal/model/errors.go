package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is a stable, machine-readable failure code.
type ErrorKind string

const (
	ErrUnauthorized     ErrorKind = "UNAUTHORIZED"
	ErrForbidden        ErrorKind = "FORBIDDEN"
	ErrRateLimited      ErrorKind = "RATE_LIMITED"
	ErrInvalidRequest   ErrorKind = "INVALID_REQUEST"
	ErrPromptNotFound   ErrorKind = "PROMPT_NOT_FOUND"
	ErrModelNotFound    ErrorKind = "MODEL_NOT_FOUND"
	ErrModelDisabled    ErrorKind = "MODEL_DISABLED"
	ErrModelAuth        ErrorKind = "MODEL_AUTH_ERROR"
	ErrModelRateLimited ErrorKind = "MODEL_RATE_LIMITED"
	ErrInvalidVariables ErrorKind = "INVALID_VARIABLES"
	ErrModelTimeout     ErrorKind = "MODEL_TIMEOUT"
	ErrModelUnavailable ErrorKind = "MODEL_UNAVAILABLE"
	ErrProvider         ErrorKind = "PROVIDER_ERROR"
	ErrInternal         ErrorKind = "INTERNAL_ERROR"
)

var kindStatus = map[ErrorKind]int{
	ErrUnauthorized:     http.StatusUnauthorized,
	ErrForbidden:        http.StatusForbidden,
	ErrRateLimited:      http.StatusTooManyRequests,
	ErrInvalidRequest:   http.StatusBadRequest,
	ErrPromptNotFound:   http.StatusNotFound,
	ErrModelNotFound:    http.StatusNotFound,
	ErrModelDisabled:    http.StatusBadRequest,
	ErrModelAuth:        http.StatusUnauthorized,
	ErrModelRateLimited: http.StatusTooManyRequests,
	ErrInvalidVariables: http.StatusBadRequest,
	ErrModelTimeout:     http.StatusGatewayTimeout,
	ErrModelUnavailable: http.StatusServiceUnavailable,
	ErrProvider:         http.StatusInternalServerError,
	ErrInternal:         http.StatusInternalServerError,
}

// HTTPStatus returns the response status for the kind.
func (k ErrorKind) HTTPStatus() int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a failure already translated into the canonical taxonomy.
type Error struct {
	Kind    ErrorKind
	Message string
	Details any
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError creates a canonical error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates a canonical error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a canonical error that keeps its cause for logging.
func WrapError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithDetails attaches structured details and returns the same error.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// AsError extracts a canonical error. Anything outside the taxonomy becomes
// INTERNAL_ERROR.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return WrapError(ErrInternal, "internal error", err)
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ErrorEnvelope is the JSON failure body returned to callers.
type ErrorEnvelope struct {
	Code      ErrorKind `json:"code"`
	Message   string    `json:"message"`
	Details   any       `json:"details,omitempty"`
	RequestID string    `json:"requestId"`
}

// Envelope builds the caller-facing envelope. Causes are never exposed.
func (e *Error) Envelope(requestID string) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:      e.Kind,
		Message:   e.Message,
		Details:   e.Details,
		RequestID: requestID,
	}
}
