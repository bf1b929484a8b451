package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrValidation     ErrorType = "VALIDATION_ERROR"
	ErrDecode         ErrorType = "DECODE_ERROR"
	ErrUsage          ErrorType = "USAGE_ERROR"
	ErrPrecondition   ErrorType = "PRECONDITION_FAILED"
	ErrAuthFailed     ErrorType = "AUTH_FAILED"
	ErrConflict       ErrorType = "CONFLICT"
	ErrInvalidRequest ErrorType = "INVALID_REQUEST"
	ErrInternal       ErrorType = "INTERNAL_ERROR"
	ErrNotFound       ErrorType = "NOT_FOUND"
	ErrRateLimited    ErrorType = "RATE_LIMITED"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	Field      string    `json:"field,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

// NewValidation reports a value that is out of range or violates an ordering rule.
func NewValidation(field, msg string) *AppError {
	err := New(ErrValidation, msg, nil)
	err.Field = field
	return err
}

// NewDecode reports malformed or truncated binary input.
func NewDecode(field, msg string, cause error) *AppError {
	err := New(ErrDecode, msg, cause)
	err.Field = field
	return err
}

func NewUsage(msg string) *AppError {
	return New(ErrUsage, msg, nil)
}

func NewPrecondition(msg string) *AppError {
	return New(ErrPrecondition, msg, nil)
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

func NewNotFound(msg string) *AppError {
	return New(ErrNotFound, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

// Is reports whether err carries an AppError of the given type anywhere in its chain.
func Is(err error, t ErrorType) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Type == t
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrValidation, ErrDecode, ErrUsage, ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrPrecondition:
		return http.StatusUnprocessableEntity
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrConflict:
		return http.StatusConflict
	case ErrNotFound:
		return http.StatusNotFound
	case ErrRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrPrecondition:
		return "Request the quote with enableEstimate=true and distinct source and destination chains."
	case ErrUsage:
		return "Use a single secret for single-fill orders and more than two secrets for multiple fills."
	case ErrAuthFailed:
		return "Check API keys and signatures."
	case ErrConflict:
		return "Retry the request."
	case ErrRateLimited:
		return "Slow down and retry after a second."
	default:
		return ""
	}
}
