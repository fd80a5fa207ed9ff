package apierr

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error classes surfaced to callers with dedicated codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const genericInternalMessage = "An unexpected error occurred"

// Classify converts any failure value into a classified error. The original
// message of an unclassified error is never exposed to the caller.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var violations validator.ValidationErrors
	if errors.As(err, &violations) {
		fields := make([]FieldError, 0, len(violations))
		for _, v := range violations {
			fields = append(fields, FieldError{
				Path:    v.Field(),
				Message: violationMessage(v),
			})
		}
		return Validation("Request validation failed", fields...).WithCause(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return (&Error{
				Kind:    KindConflict,
				Status:  http.StatusConflict,
				Code:    CodeDuplicate,
				Message: "Resource already exists",
			}).WithCause(err)
		case pgForeignKeyViolation:
			return (&Error{
				Kind:    KindValidation,
				Status:  http.StatusBadRequest,
				Code:    CodeReference,
				Message: "Referenced resource does not exist",
			}).WithCause(err)
		default:
			return Database("Database operation failed").WithCause(err)
		}
	}

	return (&Error{
		Kind:    KindUnclassified,
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: genericInternalMessage,
	}).WithCause(err)
}

func violationMessage(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + v.Param()
	case "max":
		return "must be at most " + v.Param()
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + v.Param()
	default:
		return "failed validation rule " + v.Tag()
	}
}
