package store

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by the store.
	RetCInvalidOperation                    // 3: Invalid operation.
	RetCConfigError                         // 4: The store could not be opened with the given configuration.
	RetCAlreadyExists                       // 5: A mapping for the key already exists.
	RetCNotFound                            // 6: No mapping for the key exists.
	RetCEncodingError                       // 7: A key or value could not be encoded or decoded.
	RetCIOError                             // 8: A filesystem operation failed.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCConfigError:
		return "ConfigError"
	case RetCAlreadyExists:
		return "AlreadyExists"
	case RetCNotFound:
		return "NotFound"
	case RetCEncodingError:
		return "EncodingError"
	case RetCIOError:
		return "IOError"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and optionally the underlying cause.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The underlying cause (may be nil).
}

// Sentinel errors for use with errors.Is. Two *Error values match if their codes match.
var (
	ErrConfig        = &Error{Code: RetCConfigError, Msg: "invalid configuration"}
	ErrAlreadyExists = &Error{Code: RetCAlreadyExists, Msg: "mapping already exists"}
	ErrNotFound      = &Error{Code: RetCNotFound, Msg: "mapping not found"}
	ErrEncoding      = &Error{Code: RetCEncodingError, Msg: "encoding failed"}
	ErrIO            = &Error{Code: RetCIOError, Msg: "i/o failed"}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("KVStoreError (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("KVStoreError (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *Error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new KVStoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new KVStoreError with the given code and message that wraps err.
func WrapError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// CodeOf returns the return code carried by err.
// nil maps to RetCSuccess and errors that are not a *Error map to RetCInternalError.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return RetCInternalError
}
