package repository

import (
	"context"
	"time"

	"github.com/gofrs/flock"
)

// FileLock guards the staged snapshot against concurrent writers in
// other processes.
type FileLock interface {
	// TryLockContext attempts to acquire an exclusive lock, retrying
	// at the given interval until the context is done.
	TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error)

	// Unlock releases the lock.
	Unlock() error
}

// FileLockFactory creates FileLock instances for lock file paths.
type FileLockFactory interface {
	New(path string) FileLock
}

// FlockFactory is the default factory, producing locks backed by
// github.com/gofrs/flock.
type FlockFactory struct{}

func (FlockFactory) New(path string) FileLock {
	return &flockWrapper{flock: flock.New(path)}
}

type flockWrapper struct {
	flock *flock.Flock
}

func (f *flockWrapper) TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error) {
	return f.flock.TryLockContext(ctx, retryInterval)
}

func (f *flockWrapper) Unlock() error {
	return f.flock.Unlock()
}
