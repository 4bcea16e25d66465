package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes carried by AppError.
const (
	CodeInvalidUpload     = "INVALID_UPLOAD"
	CodeUnreadablePDF     = "UNREADABLE_PDF"
	CodeExtractionFailed  = "EXTRACTION_FAILED"
	CodeExtractionTimeout = "EXTRACTION_TIMEOUT"
	CodeExtractionParse   = "EXTRACTION_PARSE"
	CodeStore             = "STORE_ERROR"
	CodeConfig            = "CONFIG_ERROR"
)

// Common application errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternal       = errors.New("internal error")
	ErrDatabase       = errors.New("database error")
	ErrValidation     = errors.New("validation failed")
	ErrExtraction     = errors.New("extraction failed")
	ErrTimeout        = errors.New("operation timed out")
	ErrNotControlFile = errors.New("not a control file")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// CodeOf returns the AppError code found in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// HTTPStatus maps an error onto the status code returned by the HTTP layer.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidUpload, CodeUnreadablePDF:
		return http.StatusBadRequest
	case CodeExtractionFailed, CodeExtractionParse:
		return http.StatusBadGateway
	case CodeExtractionTimeout:
		return http.StatusGatewayTimeout
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation), errors.Is(err, ErrNotControlFile):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
