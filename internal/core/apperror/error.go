// Package apperror provides structured error handling for the retail core.
// Every business error carries a stable machine-readable code so callers
// can branch on kind instead of matching message text.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes. The code is the contract; messages may change freely.
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeUpstream = "UPSTREAM_ERROR"

	// Validation errors (400)
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidPhone        = "INVALID_PHONE"
	CodeUnsupportedProvider = "UNSUPPORTED_PROVIDER"

	// Conflict family (409) - state machine and ledger violations
	CodeAlreadyOpen       = "ALREADY_OPEN"
	CodeNoOpenSession     = "NO_OPEN_SESSION"
	CodeSessionClosed     = "SESSION_CLOSED"
	CodeReceiptLocked     = "RECEIPT_LOCKED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeStatusRequired    = "STATUS_REQUIRED"

	// Idempotency errors (409, 422)
	CodeIdempotencyConflict = "IDEMPOTENCY_CONFLICT"
	CodeIdempotencyMismatch = "IDEMPOTENCY_MISMATCH"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"
)

// AppError is the standard error type for the service.
// It implements the error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, state names, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidPhone is returned when a destination phone cannot be normalized
// to the digit count the courier requires.
func NewInvalidPhone(phone string) *AppError {
	return &AppError{
		Code:       CodeInvalidPhone,
		Message:    "phone number must contain exactly 10 digits",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"phone": phone},
	}
}

// NewUnsupportedProvider is returned for a delivery company key that has no
// registered adapter. This is a configuration error, never retried.
func NewUnsupportedProvider(key string) *AppError {
	return &AppError{
		Code:       CodeUnsupportedProvider,
		Message:    fmt.Sprintf("delivery provider %q is not supported", key),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"provider": key},
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewAlreadyOpen is returned when a cashbox session is opened while another
// session is still open.
func NewAlreadyOpen() *AppError {
	return &AppError{
		Code:       CodeAlreadyOpen,
		Message:    "a cashbox session is already open",
		HTTPStatus: http.StatusConflict,
	}
}

// NewNoOpenSession is returned when a cash movement or close is attempted
// with no open cashbox session.
func NewNoOpenSession() *AppError {
	return &AppError{
		Code:       CodeNoOpenSession,
		Message:    "no cashbox session is currently open",
		HTTPStatus: http.StatusConflict,
	}
}

// NewSessionClosed is returned when posting against a session that has been closed.
func NewSessionClosed(sessionID any) *AppError {
	return &AppError{
		Code:       CodeSessionClosed,
		Message:    "cashbox session is closed",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"session_id": sessionID},
	}
}

// NewReceiptLocked is returned when mutating a completed receipt.
func NewReceiptLocked(receiptID any) *AppError {
	return &AppError{
		Code:       CodeReceiptLocked,
		Message:    "receipt is completed and locked for edits",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"receipt_id": receiptID},
	}
}

// NewInvalidTransition is returned for a status edge outside the allowed table.
func NewInvalidTransition(current, next string) *AppError {
	return &AppError{
		Code:       CodeInvalidTransition,
		Message:    fmt.Sprintf("cannot transition from %q to %q", current, next),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"current": current, "next": next},
	}
}

// NewStatusRequired is returned when a transition target is empty.
func NewStatusRequired() *AppError {
	return &AppError{
		Code:       CodeStatusRequired,
		Message:    "target status is required",
		HTTPStatus: http.StatusConflict,
	}
}

// NewUpstream wraps a third-party courier failure (502).
// The core never retries these; retry/backoff belongs to the caller.
func NewUpstream(provider string, err error) *AppError {
	return &AppError{
		Code:       CodeUpstream,
		Message:    "delivery provider request failed",
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"provider": provider},
		Err:        err,
	}
}

// NewIdempotencyConflict is returned when a request with the same key is
// still in flight.
func NewIdempotencyConflict(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotencyConflict,
		Message:    "request with this idempotency key is already being processed",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// NewIdempotencyMismatch is returned when an idempotency key is reused for a
// different request body, user or operation.
func NewIdempotencyMismatch(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotencyMismatch,
		Message:    "idempotency key was already used for a different request",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}
