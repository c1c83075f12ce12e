package apperror

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

var (
	ErrBadRequest = New(
		CodeBadRequest,
		"invalid body",
		http.StatusBadRequest,
	)

	ErrValidation = New(
		CodeValidation,
		"validation failed",
		http.StatusUnprocessableEntity,
	)

	ErrNotFound = New(
		CodeNotFound,
		"resource not found",
		http.StatusNotFound,
	)

	ErrConfiguration = New(
		CodeConfiguration,
		"workflow configuration is missing or inconsistent",
		http.StatusBadRequest,
	)

	ErrInsufficientAuthority = New(
		CodeInsufficientAuthority,
		"request amount exceeds the approver's limit of authority",
		http.StatusForbidden,
	)

	ErrNoPendingStepForActor = New(
		CodeNoPendingStepForActor,
		"no pending workflow step for this actor",
		http.StatusForbidden,
	)

	ErrBudgetExceeded = New(
		CodeBudgetExceeded,
		"budget limit exceeded",
		http.StatusUnprocessableEntity,
	)

	ErrForbidden = New(
		CodeForbidden,
		"you do not have permission to perform this action",
		http.StatusForbidden,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"authentication is required",
		http.StatusUnauthorized,
	)

	ErrConflict = New(
		CodeConflict,
		"request conflicts with one already received",
		http.StatusConflict,
	)

	ErrUnavailable = New(
		CodeUnavailable,
		"service temporarily unavailable",
		http.StatusServiceUnavailable,
	)

	ErrInternal = New(
		CodeInternalError,
		"internal error",
		http.StatusInternalServerError,
	)
)

// FieldError is one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validation builds a VALIDATION_ERROR for a single field.
func Validation(field, message string) *AppError {
	return ErrValidation.WithDetails([]FieldError{{Field: field, Message: message}})
}

// NotFound names the missing resource in the message.
func NotFound(resource string) *AppError {
	return ErrNotFound.WithMessage(resource + " not found")
}

// Configuration describes which piece of workflow master data is broken.
func Configuration(message string) *AppError {
	return ErrConfiguration.WithMessage(message)
}

// Internal wraps a persistence failure; the underlying text is kept for diagnostics.
func Internal(err error) *AppError {
	if err == nil {
		return nil
	}
	if ae, ok := As(err); ok {
		return ae
	}
	e := Wrap(err, CodeInternalError, ErrInternal.Message, ErrInternal.HTTPStatus)
	e.Details = err.Error()
	return e
}

// FromRepository maps a repository error: gorm's not-found becomes
// NotFound(resource), AppErrors pass through, anything else is Internal.
func FromRepository(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(resource)
	}
	return Internal(err)
}
