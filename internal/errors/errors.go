// Package errors provides typed CLI errors carrying process exit codes.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes for arcade
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitGameNotFound = 2
	ExitLoadFailed   = 3
	ExitStorageError = 4
	ExitConfigError  = 5
	ExitAuthError    = 6
)

// ArcadeError is the base error type for the arcade CLI
type ArcadeError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ArcadeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ArcadeError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *ArcadeError) ExitCode() int {
	return e.Code
}

// New creates a new ArcadeError
func New(code int, message string) *ArcadeError {
	return &ArcadeError{Code: code, Message: message}
}

// Wrap wraps an existing error with an ArcadeError
func Wrap(code int, message string, cause error) *ArcadeError {
	return &ArcadeError{Code: code, Message: message, Cause: cause}
}

// GameNotFound returns an error for a name the registry does not know
func GameNotFound(name string, cause error) *ArcadeError {
	return Wrap(ExitGameNotFound, fmt.Sprintf("game not found: %s", name), cause)
}

// LoadFailed returns an error for a bundle that could not be loaded
func LoadFailed(path string, cause error) *ArcadeError {
	return Wrap(ExitLoadFailed, fmt.Sprintf("failed to load %s", path), cause)
}

// StorageError returns an error for a stats store failure
func StorageError(op string, cause error) *ArcadeError {
	return Wrap(ExitStorageError, op, cause)
}

// ConfigError returns an error for invalid configuration
func ConfigError(message string, cause error) *ArcadeError {
	return Wrap(ExitConfigError, message, cause)
}

// AuthError returns an error for token problems
func AuthError(message string, cause error) *ArcadeError {
	return Wrap(ExitAuthError, message, cause)
}

// GetExitCode extracts the exit code from an error chain
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ae *ArcadeError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ExitGeneralError
}
