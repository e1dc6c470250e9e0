package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func UnknownTemplate(templateID string) *AppError {
	return &AppError{
		Code:    "UNKNOWN_TEMPLATE",
		Message: fmt.Sprintf("notification template %q is not registered", templateID),
		Status:  http.StatusInternalServerError,
	}
}

func MissingVariable(templateID, variable string) *AppError {
	return &AppError{
		Code:    "MISSING_VARIABLE",
		Message: fmt.Sprintf("template %q has no value for placeholder %q", templateID, variable),
		Status:  http.StatusInternalServerError,
	}
}

func UnsupportedVersion(eventType string, version, max int) *AppError {
	return &AppError{
		Code:    "UNSUPPORTED_VERSION",
		Message: fmt.Sprintf("envelope %s version %d exceeds supported version %d", eventType, version, max),
		Status:  http.StatusBadRequest,
	}
}

func BusUnavailable(topic string, err error) *AppError {
	return &AppError{
		Code:    "BUS_UNAVAILABLE",
		Message: fmt.Sprintf("event bus unavailable for topic %s", topic),
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
