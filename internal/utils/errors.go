package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeValidationError    ErrorCode = "VALIDATION_ERROR"
	ErrorCodeFormatLookupFailed ErrorCode = "FORMAT_LOOKUP_FAILED"
	ErrorCodeDownloadFailed     ErrorCode = "DOWNLOAD_FAILED"
	ErrorCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	ErrorCodeStorageFailed      ErrorCode = "STORAGE_FAILED"
	ErrorCodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	ErrorCodeStaleResponse      ErrorCode = "STALE_RESPONSE"
	ErrorCodeMenuNotFound       ErrorCode = "MENU_NOT_FOUND"
	ErrorCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrorCodeRateLimitExceeded  ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Err        error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewError(code ErrorCode, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func NewErrorWithDetails(code ErrorCode, message string, statusCode int, details map[string]interface{}) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// AsAppError extracts an *AppError from err, falling back to an internal error.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	internal := NewInternalError()
	internal.Err = err
	return internal
}

// HasCode reports whether err is an *AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Common error constructors
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return NewErrorWithDetails(ErrorCodeValidationError, message, http.StatusBadRequest, details)
}

func NewEmptyURLError() *AppError {
	return NewValidationError("Link is required", nil)
}

// NewFormatLookupError carries the backend's message verbatim.
func NewFormatLookupError(message string) *AppError {
	return NewError(ErrorCodeFormatLookupFailed, message, http.StatusUnprocessableEntity)
}

func NewDownloadError(statusCode int) *AppError {
	return NewErrorWithDetails(
		ErrorCodeDownloadFailed,
		"Download failed",
		http.StatusBadGateway,
		map[string]interface{}{
			"backend_status": statusCode,
		},
	)
}

func NewBackendUnavailableError(err error) *AppError {
	appErr := NewError(
		ErrorCodeBackendUnavailable,
		"Download service is unreachable",
		http.StatusBadGateway,
	)
	appErr.Err = err
	return appErr
}

func NewStorageError(err error) *AppError {
	appErr := NewError(
		ErrorCodeStorageFailed,
		"Failed to save the downloaded file",
		http.StatusInternalServerError,
	)
	appErr.Err = err
	return appErr
}

func NewDatabaseError(err error) *AppError {
	appErr := NewError(
		ErrorCodeDatabaseError,
		"Database operation failed",
		http.StatusInternalServerError,
	)
	appErr.Err = err
	return appErr
}

func NewStaleResponseError(generation uint64) *AppError {
	return NewErrorWithDetails(
		ErrorCodeStaleResponse,
		"A newer search replaced this one",
		http.StatusConflict,
		map[string]interface{}{
			"generation": generation,
		},
	)
}

func NewMenuNotFoundError(menuID string) *AppError {
	return NewError(
		ErrorCodeMenuNotFound,
		fmt.Sprintf("Menu %s not found", menuID),
		http.StatusNotFound,
	)
}

func NewInvalidTokenError(err error) *AppError {
	appErr := NewError(
		ErrorCodeInvalidToken,
		"Invalid or expired format token",
		http.StatusUnauthorized,
	)
	appErr.Err = err
	return appErr
}

func NewRateLimitError() *AppError {
	return NewError(
		ErrorCodeRateLimitExceeded,
		"Too many requests",
		http.StatusTooManyRequests,
	)
}

func NewInternalError() *AppError {
	return NewError(
		ErrorCodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)
}
