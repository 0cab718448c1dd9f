// Package errors provides structured error types for the graph engine.
//
// Every failure that leaves the engine carries a machine-readable [Code], so
// callers (the CLI today, an HTTP layer tomorrow) can map it to user-facing
// behavior without string matching:
//
//   - PARSE_ERROR: the text encoding cannot be turned into a graph
//   - VALIDATION_ERROR: the graph breaks a structural invariant at save time
//   - BAD_REQUEST: a mutation request is semantically invalid
//   - NOT_FOUND: a referenced graph or node is absent
//
// # Usage
//
//	err := errors.New(errors.ErrCodeBadRequest, "node %q is reserved", id)
//	if errors.Is(err, errors.ErrCodeBadRequest) {
//	    // reject the request
//	}
//
//	// Wrap a sentinel so errors.Is from the standard library still matches it
//	err := errors.Wrap(errors.ErrCodeValidation, dag.ErrCycle, "graph %d", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Engine errors
	ErrCodeParse      Code = "PARSE_ERROR"
	ErrCodeValidation Code = "VALIDATION_ERROR"
	ErrCodeBadRequest Code = "BAD_REQUEST"
	ErrCodeNotFound   Code = "NOT_FOUND"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ParseError is shorthand for Wrap(ErrCodeParse, ...).
func ParseError(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeParse, cause, format, args...)
}

// ValidationError is shorthand for Wrap(ErrCodeValidation, ...).
func ValidationError(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeValidation, cause, format, args...)
}

// BadRequest is shorthand for Wrap(ErrCodeBadRequest, ...).
func BadRequest(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeBadRequest, cause, format, args...)
}

// NotFound is shorthand for Wrap(ErrCodeNotFound, ...).
func NotFound(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeNotFound, cause, format, args...)
}
