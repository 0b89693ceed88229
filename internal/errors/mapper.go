// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// APIError is an error carrying the HTTP status it should be reported with.
// The message is always safe to show to a client.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Validation creates a 400 error for malformed input.
func Validation(msg string) error {
	return &APIError{Status: http.StatusBadRequest, Message: msg}
}

// Unauthorized creates a 401 error for missing/invalid credentials.
func Unauthorized(msg string) error {
	return &APIError{Status: http.StatusUnauthorized, Message: msg}
}

// Forbidden creates a 403 error for authenticated but disallowed access.
func Forbidden(msg string) error {
	return &APIError{Status: http.StatusForbidden, Message: msg}
}

// NotFound creates a 404 error for missing referenced records.
func NotFound(msg string) error {
	return &APIError{Status: http.StatusNotFound, Message: msg}
}

// Conflict creates a 409 error (duplicate email, already-connected pair).
func Conflict(msg string) error {
	return &APIError{Status: http.StatusConflict, Message: msg}
}

// Map converts repo/infra errors into APIErrors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr

	case errors.Is(err, gorm.ErrRecordNotFound):
		return &APIError{Status: http.StatusNotFound, Message: "record not found"}

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &APIError{Status: http.StatusConflict, Message: "record already exists"}

	case errors.Is(err, context.DeadlineExceeded):
		return &APIError{Status: http.StatusGatewayTimeout, Message: "request timed out"}

	case errors.Is(err, context.Canceled):
		return &APIError{Status: http.StatusBadRequest, Message: "request was canceled"}

	default:
		// never leak internals to clients
		return &APIError{Status: http.StatusInternalServerError, Message: "internal server error"}
	}
}

// Status returns the HTTP status for an already-mapped error.
func Status(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}
