// Package apierr defines the closed set of error kinds the API can return and
// the dispatcher that translates any failure into the wire error contract.
package apierr

import (
	"fmt"
	"net/http"
)

// Kind tags a classified error. The set is closed; the dispatcher matches
// exhaustively on it.
type Kind int

const (
	KindUnclassified Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimit
	KindDatabase
)

// Stable wire codes. Callers key behaviour off these, never off messages.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeAuthorization  = "AUTHORIZATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	CodeDatabase       = "DATABASE_ERROR"
	CodeDuplicate      = "DUPLICATE_ERROR"
	CodeReference      = "REFERENCE_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
)

// FieldError is one flattened validation violation.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is a classified application error carrying its wire mapping.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Fields  []FieldError
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.cause }

// Operational reports whether the error is an anticipated, classified failure
// as opposed to an unexpected fault.
func (e *Error) Operational() bool { return e.Kind != KindUnclassified }

// WithCause attaches the underlying error without changing the wire shape.
func (e *Error) WithCause(cause error) *Error {
	clone := *e
	clone.cause = cause
	return &clone
}

// Validation builds a 400 error carrying field-level violations.
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Code: CodeValidation, Message: message, Fields: fields}
}

// Authentication builds a 401 error ("who are you").
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Status: http.StatusUnauthorized, Code: CodeAuthentication, Message: message}
}

// Authorization builds a 403 error ("you may not do that").
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Status: http.StatusForbidden, Code: CodeAuthorization, Message: message}
}

// NotFound builds a 404 error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

// Conflict builds a 409 error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Code: CodeConflict, Message: message}
}

// RateLimit builds a 429 error.
func RateLimit(message string) *Error {
	return &Error{Kind: KindRateLimit, Status: http.StatusTooManyRequests, Code: CodeRateLimit, Message: message}
}

// Database builds a 500 error for storage-side failures, including failed
// post-mutation side effects that require operator attention.
func Database(message string) *Error {
	return &Error{Kind: KindDatabase, Status: http.StatusInternalServerError, Code: CodeDatabase, Message: message}
}
