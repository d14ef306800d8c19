package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that no record carries the requested key.
	ErrNotFound = errors.New("record not found")

	// ErrNilRecord reports an Insert of a nil pointer, map, slice or
	// interface value.
	ErrNilRecord = errors.New("record is nil")

	// ErrDuplicateKey reports an Insert whose key is already present.
	ErrDuplicateKey = errors.New("duplicate record key")

	// ErrStoreBusy reports that the bounded save queue is full; the
	// mutation stayed in memory and was not persisted.
	ErrStoreBusy = errors.New("store busy: save queue is full")

	// ErrNotSupported reports an operation the implementation cannot
	// perform, such as sending Go functions to a remote repository.
	ErrNotSupported = errors.New("operation not supported")
)

// StorageError reports a failed interaction with the remote mirror.
// Transient distinguishes retry-worthy failures (timeouts, unreachable
// endpoints) from permanent ones.
type StorageError struct {
	Op        string // "load" or "save"
	Transient bool
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// SerializationError reports a snapshot that could not be encoded or
// decoded.
type SerializationError struct {
	Op  string // "marshal" or "unmarshal"
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("snapshot %s failed: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a storage failure worth retrying.
func IsTransient(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Transient
}
