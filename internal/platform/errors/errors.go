// Package errors provides structured errors that carry a category, a client
// facing message and optional context, and map onto HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	TypeValidation       ErrorType = "validation"
	TypeNotFound         ErrorType = "not_found"
	TypeConflict         ErrorType = "conflict"
	TypeTooLarge         ErrorType = "too_large"
	TypeUnsupportedMedia ErrorType = "unsupported_media"
	TypeRateLimited      ErrorType = "rate_limited"
	TypeInternal         ErrorType = "internal"
	TypeExternal         ErrorType = "external"
)

var statusByType = map[ErrorType]int{
	TypeValidation:       http.StatusBadRequest,
	TypeNotFound:         http.StatusNotFound,
	TypeConflict:         http.StatusConflict,
	TypeTooLarge:         http.StatusRequestEntityTooLarge,
	TypeUnsupportedMedia: http.StatusUnsupportedMediaType,
	TypeRateLimited:      http.StatusTooManyRequests,
	TypeInternal:         http.StatusInternalServerError,
	TypeExternal:         http.StatusBadGateway,
}

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status code for this error type. Unknown types map to 500.
func (e *Error) HTTPStatus() int {
	if status, ok := statusByType[e.Type]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause, Context: make(map[string]any)}
}

// ValidationError creates a new validation error (HTTP 400).
func ValidationError(message string) *Error {
	return newError(TypeValidation, message, nil)
}

// NotFoundError creates a new not-found error (HTTP 404).
func NotFoundError(message string) *Error {
	return newError(TypeNotFound, message, nil)
}

// ConflictError creates a new conflict error (HTTP 409).
func ConflictError(message string) *Error {
	return newError(TypeConflict, message, nil)
}

// TooLargeError creates a new payload-too-large error (HTTP 413).
func TooLargeError(message string) *Error {
	return newError(TypeTooLarge, message, nil)
}

// UnsupportedMediaError creates a new unsupported-media-type error (HTTP 415).
func UnsupportedMediaError(message string) *Error {
	return newError(TypeUnsupportedMedia, message, nil)
}

// RateLimitedError creates a new too-many-requests error (HTTP 429).
func RateLimitedError(message string) *Error {
	return newError(TypeRateLimited, message, nil)
}

// InternalError creates a new internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

// ExternalError creates a new external service error (HTTP 502).
func ExternalError(message string, cause error) *Error {
	return newError(TypeExternal, message, cause)
}

// WithField adds a context field to the error (chainable).
func (e *Error) WithField(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// AsStructuredError converts any error into a structured Error.
// Echo HTTP errors keep their status; anything unknown becomes internal.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return FromHTTPError(httpErr)
	}

	return InternalError("internal server error", err)
}

// FromHTTPError converts Echo's HTTPError to a structured error.
func FromHTTPError(httpErr *echo.HTTPError) *Error {
	message := http.StatusText(httpErr.Code)
	if msg, ok := httpErr.Message.(string); ok && msg != "" {
		message = msg
	}
	if message == "" {
		message = "internal server error"
	}

	errType := TypeInternal
	for t, status := range statusByType {
		if status == httpErr.Code {
			errType = t
			break
		}
	}
	if httpErr.Code == http.StatusServiceUnavailable {
		errType = TypeExternal
	}

	return newError(errType, message, httpErr.Internal)
}
