// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors.
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation_error"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeError         ErrorType = "processing_error"
	ErrorTypeScenarioFetch ErrorType = "scenario_fetch_error"
	ErrorTypeSnippetFetch  ErrorType = "snippet_fetch_error"
	ErrorTypeConflict      ErrorType = "conflict"
)

// AppError is the common error shape surfaced to handlers and the CLI.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string // user-facing error code
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// NewValidationError creates a validation error.
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

// NewProcessingError creates a processing error.
func NewProcessingError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeError, message, originalError)
}

// NewConflictError creates a conflict error.
func NewConflictError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeConflict, message, originalError)
}

// NewScenarioNotFoundError reports a scenario id with no catalog entry.
func NewScenarioNotFoundError(scenarioID string) *AppError {
	return NewNotFoundError(fmt.Sprintf("scenario %q not found", scenarioID), nil)
}

// ScenarioFetchError is returned when the scenario-detail endpoint answers
// with a non-success status or cannot be reached.
type ScenarioFetchError struct {
	ScenarioID string
	StatusCode int // 0 for transport or decode failures
	Err        error
}

func (e *ScenarioFetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch scenario %q: unexpected status %d", e.ScenarioID, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch scenario %q: %v", e.ScenarioID, e.Err)
	default:
		return fmt.Sprintf("fetch scenario %q failed", e.ScenarioID)
	}
}

func (e *ScenarioFetchError) Unwrap() error {
	return e.Err
}

// SnippetFetchError is returned when a snippet cannot be retrieved.
type SnippetFetchError struct {
	Path       string
	StatusCode int // 0 for transport failures
	Err        error
}

func (e *SnippetFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch snippet %q: unexpected status %d", e.Path, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch snippet %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("fetch snippet %q failed", e.Path)
}

func (e *SnippetFetchError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a validation error.
func IsValidationError(err error) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == ErrorTypeValidation
	}
	return false
}

// IsNotFoundError reports whether err is a not-found error.
func IsNotFoundError(err error) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == ErrorTypeNotFound
	}
	return false
}

// IsConflictError reports whether err is a conflict error.
func IsConflictError(err error) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == ErrorTypeConflict
	}
	return false
}

// IsScenarioFetchError reports whether err came from the scenario-detail fetch.
func IsScenarioFetchError(err error) bool {
	var fetchErr *ScenarioFetchError
	if errors.As(err, &fetchErr) {
		return true
	}
	var appError *AppError
	return errors.As(err, &appError) && appError.Type == ErrorTypeScenarioFetch
}

// IsSnippetFetchError reports whether err came from a snippet fetch.
func IsSnippetFetchError(err error) bool {
	var fetchErr *SnippetFetchError
	return errors.As(err, &fetchErr)
}

func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeError:
		return "PROCESSING_ERROR"
	case ErrorTypeScenarioFetch:
		return "SCENARIO_FETCH_FAILED"
	case ErrorTypeSnippetFetch:
		return "SNIPPET_FETCH_FAILED"
	case ErrorTypeConflict:
		return "CONFLICT"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError wraps err with message, preserving an existing AppError type.
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
			Code:    appError.Code,
		}
	}

	return NewAppError(errType, message, err)
}
