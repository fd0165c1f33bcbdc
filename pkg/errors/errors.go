package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeInvalidBody  = "INVALID_BODY"

	CodeRequestTimeout       = "REQUEST_TIMEOUT"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodeRateLimited          = "RATE_LIMITED"

	CodeInvalidResource  = "INVALID_RESOURCE"
	CodeInvalidDate      = "INVALID_DATE"
	CodeInvalidOrdering  = "INVALID_ORDERING"
	CodeDurationTooShort = "DURATION_TOO_SHORT"
	CodeDurationTooLong  = "DURATION_TOO_LONG"
	CodeSlotConflict     = "SLOT_CONFLICT"
	CodeMissingParameter = "MISSING_PARAMETER"
)

type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// WithCause attaches the error that errors.Is should find behind e.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

// BadRequest builds a 400 error with a specific code. The booking admission
// gates use it so each rejection keeps its own kind.
func BadRequest(code, message string) *AppError {
	return New(code, message, http.StatusBadRequest)
}

func InvalidInput(message string) *AppError {
	return BadRequest(CodeInvalidInput, message)
}

func MissingParameter(message string) *AppError {
	return BadRequest(CodeMissingParameter, message)
}

func Conflict(code, message string) *AppError {
	return New(code, message, http.StatusConflict)
}

func RequestTimeout(err error) *AppError {
	return &AppError{
		Code:       CodeRequestTimeout,
		Message:    "Request timeout",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
