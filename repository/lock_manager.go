package repository

import "sync"

// OperationType defines whether an operation reads or mutates the
// collection, so the lock manager can pick the matching lock.
type OperationType int

const (
	// ReadOperation marks an operation that only reads the collection.
	// Reads proceed concurrently with each other.
	ReadOperation OperationType = iota

	// WriteOperation marks an operation that mutates the collection.
	// Writes are exclusive against all reads and writes.
	WriteOperation
)

// LockManager centralizes the collection's read/write locking so every
// access path uses the right lock type. Mutation and snapshot
// serialization always run under the write lock; staleness checks and
// query evaluation run under the read lock.
type LockManager struct {
	mu sync.RWMutex
}

// NewLockManager creates a ready-to-use lock manager.
func NewLockManager() *LockManager {
	return &LockManager{}
}

// Execute runs fn under the lock matching the operation type. The lock
// is released when fn returns, including on panic.
func (lm *LockManager) Execute(opType OperationType, fn func() error) error {
	switch opType {
	case ReadOperation:
		lm.mu.RLock()
		defer lm.mu.RUnlock()
	case WriteOperation:
		lm.mu.Lock()
		defer lm.mu.Unlock()
	}
	return fn()
}
