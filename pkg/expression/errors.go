package expression

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a Rill compile-time or run-time error.
type ErrorCode string

// Error codes. C0xxx errors are produced while building or checking a
// program and are fatal to compilation. E1xxx errors are recoverable at
// run time: the language's error-handling syntax can intercept them.
// A0xxx errors abort evaluation of the current event.
const (
	// C0xxx: compile-time errors
	ErrEmptyBlock         ErrorCode = "C0101"
	ErrUndefinedVariable  ErrorCode = "C0102"
	ErrNonBooleanOperand  ErrorCode = "C0103"
	ErrNonBooleanPredicate ErrorCode = "C0104"
	ErrArgumentCount      ErrorCode = "C0105"
	ErrArgumentKind       ErrorCode = "C0106"
	ErrInvalidOperandKind ErrorCode = "C0107"

	// E1xxx: recoverable run-time errors
	ErrDivisionByZero ErrorCode = "E1001"
	ErrTypeMismatch   ErrorCode = "E1002"
	ErrFunctionFailed ErrorCode = "E1003"

	// A0xxx: abort-triggering run-time errors
	ErrAborted ErrorCode = "A0001"
)

// Error is a structured Rill error.
//
// Abort distinguishes the two run-time flavors: recoverable errors are
// plain values the language can branch on, abort-triggering errors halt
// evaluation of the whole event. Which flavor an expression can produce is
// exactly what the abortable flag on its [TypeDef] predicts.
type Error struct {
	Code    ErrorCode
	Message string
	Abort   bool
	Err     error
}

// NewError creates a recoverable error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf creates a recoverable error with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewAbortError creates an abort-triggering error.
func NewAbortError(message string) *Error {
	return &Error{Code: ErrAborted, Message: message, Abort: true}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Abort {
		return fmt.Sprintf("%s: aborted: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// IsAbort reports whether err is an abort-triggering Rill error.
func IsAbort(err error) bool {
	var rerr *Error
	return errors.As(err, &rerr) && rerr.Abort
}
