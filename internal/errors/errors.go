// Package errors defines the structured error type used across sensorwatch.
//
// Transport faults never reach callers as errors; they show up on the
// connection state stream. What does come back as an *Error is a config
// problem, a malformed payload, a failed historical fetch or bad user input.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes. The CLI maps them onto stable JSON error codes.
const (
	ErrConfig = "CONFIG"
	ErrStream = "STREAM"
	ErrDecode = "DECODE"
	ErrFetch  = "FETCH"
	ErrInput  = "INPUT"
)

// Error is a categorized failure. Printed in full it reads:
//
//	✗ <Message>
//
//	  <Cause>
//
//	  <Suggestion>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New returns an Error without a cause.
func New(code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion}
}

// WrapWithCode returns an Error carrying err as its cause.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion, Cause: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✗ %s\n", e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, "\n  %s\n", e.Cause)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  %s\n", e.Suggestion)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode reports whether err has an *Error with the given code in its chain.
func IsCode(err error, code string) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == code
}

// Summary renders err on a single line for status bars and logs: the
// message, then the cause when there is one. Other errors render as-is.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var se *Error
	if !errors.As(err, &se) {
		return err.Error()
	}
	if se.Cause != nil {
		return fmt.Sprintf("%s: %v", se.Message, se.Cause)
	}
	return se.Message
}

// ExitError carries a process exit code without printing anything extra.
type ExitError struct {
	Code int
}

// NewExitError returns an ExitError for code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the exit code from an ExitError anywhere in the chain.
func GetExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
