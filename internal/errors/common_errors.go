// Package errors classifies the failures a report card run can surface and
// renders them as console messages.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeFileNotFound ErrorType = "FILE_NOT_FOUND"
	ErrTypeSchema       ErrorType = "SCHEMA"
	ErrTypeUnexpected   ErrorType = "UNEXPECTED"
	ErrTypeConfig       ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewFileNotFoundError reports an input path that does not resolve to a readable file.
func NewFileNotFoundError(path string, cause error) *AppError {
	return NewAppError(ErrTypeFileNotFound, "The specified Excel file was not found.", cause).
		WithContext("path", path)
}

// NewSchemaError reports required columns absent from the input sheet, in
// the order given.
func NewSchemaError(missing []string) *AppError {
	return NewAppError(ErrTypeSchema, "Excel file does not contain the required columns.", nil).
		WithContext("missing_columns", append([]string(nil), missing...))
}

// NewUnexpectedError wraps any failure that is neither a missing file nor a schema problem.
func NewUnexpectedError(message string, cause error) *AppError {
	return NewAppError(ErrTypeUnexpected, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// KindOf classifies err. Errors that carry no AppError are unexpected.
func KindOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrTypeUnexpected
}

// IsFileNotFound reports whether err is a FILE_NOT_FOUND error
func IsFileNotFound(err error) bool {
	return err != nil && KindOf(err) == ErrTypeFileNotFound
}

// IsSchema reports whether err is a SCHEMA error
func IsSchema(err error) bool {
	return err != nil && KindOf(err) == ErrTypeSchema
}

// MissingColumns returns the columns recorded on a schema error, if any.
func MissingColumns(err error) []string {
	var appErr *AppError
	if !stderrors.As(err, &appErr) || appErr.Type != ErrTypeSchema {
		return nil
	}
	cols, _ := appErr.Context["missing_columns"].([]string)
	return cols
}

// UserMessage renders err as the single console line shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}

	switch appErr.Type {
	case ErrTypeFileNotFound:
		return "Error: " + appErr.Message
	case ErrTypeSchema:
		msg := "Error: " + appErr.Message
		if cols := MissingColumns(appErr); len(cols) > 0 {
			msg += fmt.Sprintf(" (missing: %s)", strings.Join(cols, ", "))
		}
		return msg
	case ErrTypeConfig:
		if appErr.Cause != nil {
			return fmt.Sprintf("Error: invalid configuration: %s: %v", appErr.Message, appErr.Cause)
		}
		return "Error: invalid configuration: " + appErr.Message
	default:
		if appErr.Cause != nil {
			return fmt.Sprintf("An unexpected error occurred: %s: %v", appErr.Message, appErr.Cause)
		}
		return "An unexpected error occurred: " + appErr.Message
	}
}
