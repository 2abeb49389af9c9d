// Package errors provides the error type and exit codes shared by the build utilities.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Exit codes for different error categories.
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitConfigError     = 2
	ExitValidationError = 3
)

// ExitUsage is returned for missing or invalid command-line arguments.
// It shares the general code so scripts that only test for non-zero keep working.
const ExitUsage = ExitGeneralError

// ToolError is the base error type for all tool-specific errors.
type ToolError struct {
	Code    int
	Message string
	Cause   error
}

// Error returns the error message, including the cause if present.
func (e *ToolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error.
func (e *ToolError) Unwrap() error {
	return e.Cause
}

// NewUsageError creates an error for bad command-line arguments.
func NewUsageError(msg string) *ToolError {
	return &ToolError{
		Code:    ExitUsage,
		Message: msg,
	}
}

// NewConfigError creates a new configuration error.
func NewConfigError(msg string) *ToolError {
	return &ToolError{
		Code:    ExitConfigError,
		Message: msg,
	}
}

// NewConfigErrorWithCause creates a new configuration error with an underlying cause.
func NewConfigErrorWithCause(msg string, cause error) *ToolError {
	return &ToolError{
		Code:    ExitConfigError,
		Message: msg,
		Cause:   cause,
	}
}

// NewValidationErrorWithCause creates a new validation error with an underlying cause.
func NewValidationErrorWithCause(msg string, cause error) *ToolError {
	return &ToolError{
		Code:    ExitValidationError,
		Message: msg,
		Cause:   cause,
	}
}

// NewGeneralErrorWithCause creates a new general error with an underlying cause.
func NewGeneralErrorWithCause(msg string, cause error) *ToolError {
	return &ToolError{
		Code:    ExitGeneralError,
		Message: msg,
		Cause:   cause,
	}
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	return codeOf(err) == ExitConfigError
}

// GetExitCode returns the exit code for an error.
// Wrapped ToolErrors are found through the chain; anything else is ExitGeneralError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if code := codeOf(err); code != -1 {
		return code
	}
	return ExitGeneralError
}

func codeOf(err error) int {
	var toolErr *ToolError
	if stderrors.As(err, &toolErr) {
		return toolErr.Code
	}
	return -1
}
