package memio

import (
	"errors"
	"fmt"
)

// Error represents a memio error with an error code
type Error struct {
	Code    ErrorCode
	Message string
	Err     error // wrapped error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("memio: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("memio: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *Error carrying the same code, so that
// errors.Is(err, ErrSizeError) matches regardless of the wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ErrorCode identifies the failure class of an Error.
type ErrorCode int

// Error codes
const (
	// Success indicates the operation completed successfully
	Success ErrorCode = 0

	// ErrSize indicates a buffer is shorter than the target type
	ErrSize ErrorCode = -1

	// ErrAlignment indicates a buffer address violates the target type's alignment
	ErrAlignment ErrorCode = -2

	// ErrNotPlain indicates the target type holds Go pointers and cannot alias raw bytes
	ErrNotPlain ErrorCode = -3

	// ErrAcquire indicates a resource acquisition call failed
	ErrAcquire ErrorCode = -4

	// ErrRelease indicates a resource release call failed
	ErrRelease ErrorCode = -5

	// ErrMapping indicates a memory reservation or mapping step failed
	ErrMapping ErrorCode = -6

	// ErrInvalidSize indicates a non-positive or overflowing size
	ErrInvalidSize ErrorCode = -7

	// ErrWrite indicates an underlying write failed or was short
	ErrWrite ErrorCode = -8

	// ErrProblem indicates an unexpected internal error
	ErrProblem ErrorCode = -99
)

// Error descriptions
var errorMessages = map[ErrorCode]string{
	Success:        "success",
	ErrSize:        "buffer too small",
	ErrAlignment:   "misaligned buffer",
	ErrNotPlain:    "type contains pointers",
	ErrAcquire:     "resource acquisition failed",
	ErrRelease:     "resource release failed",
	ErrMapping:     "memory mapping failed",
	ErrInvalidSize: "invalid size",
	ErrWrite:       "write failed",
	ErrProblem:     "unexpected internal error",
}

// NewError creates a new Error with the given code
func NewError(code ErrorCode) *Error {
	msg, ok := errorMessages[code]
	if !ok {
		msg = fmt.Sprintf("unknown error code %d", code)
	}
	return &Error{Code: code, Message: msg}
}

// WrapError creates a new Error wrapping another error
func WrapError(code ErrorCode, err error) *Error {
	e := NewError(code)
	e.Err = err
	return e
}

// Common error variables for use with errors.Is
var (
	ErrSizeError        = NewError(ErrSize)
	ErrAlignmentError   = NewError(ErrAlignment)
	ErrNotPlainError    = NewError(ErrNotPlain)
	ErrAcquireError     = NewError(ErrAcquire)
	ErrReleaseError     = NewError(ErrRelease)
	ErrMappingError     = NewError(ErrMapping)
	ErrInvalidSizeError = NewError(ErrInvalidSize)
	ErrWriteError       = NewError(ErrWrite)
)

// IsSize returns true if the error is ErrSize
func IsSize(err error) bool {
	return Code(err) == ErrSize
}

// IsAlignment returns true if the error is ErrAlignment
func IsAlignment(err error) bool {
	return Code(err) == ErrAlignment
}

// IsMapping returns true if the error is ErrMapping
func IsMapping(err error) bool {
	return Code(err) == ErrMapping
}

// IsWrite returns true if the error is ErrWrite
func IsWrite(err error) bool {
	return Code(err) == ErrWrite
}

// Code returns the error code from an error, or ErrProblem if not a memio error
func Code(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrProblem
}
