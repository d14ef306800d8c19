package blob

import (
	"errors"
	"fmt"
)

// Error codes classified from backend failures.
const (
	CodeContainerNotFound = "CONTAINER_NOT_FOUND"
	CodeObjectNotFound    = "OBJECT_NOT_FOUND"
	CodeBlockNotFound     = "BLOCK_NOT_FOUND"
	CodeAuthInvalid       = "AUTH_INVALID"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeTimeout           = "TIMEOUT"
	CodeUnreachable       = "ENDPOINT_UNREACHABLE"
	CodeWriteFailed       = "WRITE_FAILED"
	CodeReadFailed        = "READ_FAILED"
)

// Error wraps a backend failure with a stable code and a retryability
// hint. Transient conditions (timeouts, unreachable endpoints) are
// retryable; missing objects and rejected credentials are not.
type Error struct {
	Code      string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// WrapError builds an *Error around a backend failure. A nil err
// produces an *Error carrying only the code.
func WrapError(code string, retryable bool, err error) *Error {
	return &Error{Code: code, Retryable: retryable, Err: err}
}

// IsNotFound reports whether err represents a missing container,
// object or staged block.
func IsNotFound(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Code {
	case CodeContainerNotFound, CodeObjectNotFound, CodeBlockNotFound:
		return true
	}
	return false
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
