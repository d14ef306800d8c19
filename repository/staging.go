package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// Constants for file locking
const (
	lockTimeout    = 3 * time.Second
	lockMaxRetries = 3
	lockRetryDelay = 100 * time.Millisecond
)

// stager writes snapshots into the local staging directory before they
// are uploaded to the mirror. A cross-process file lock guards each
// staged file so processes sharing the directory cannot interleave
// writes.
type stager struct {
	fs          FileSystem
	lockFactory FileLockFactory
	dir         string
}

func newStager(fs FileSystem, lockFactory FileLockFactory, dir string) *stager {
	return &stager{fs: fs, lockFactory: lockFactory, dir: dir}
}

// Write stages data under name and returns the staged file path.
func (st *stager) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := st.fs.MkdirAll(st.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	path := filepath.Join(st.dir, name)
	lock := st.lockFactory.New(path + ".lock")

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	if err := acquireLock(lockCtx, lock); err != nil {
		return "", err
	}
	defer func() { _ = lock.Unlock() }()

	// Write to temp file, then rename (atomic on most filesystems)
	tmpFile := path + ".tmp"
	if err := st.fs.WriteFile(tmpFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := st.fs.Rename(tmpFile, path); err != nil {
		_ = st.fs.Remove(tmpFile)
		return "", fmt.Errorf("failed to rename file: %w", err)
	}

	return path, nil
}

// acquireLock attempts to acquire an exclusive file lock with retry logic
func acquireLock(ctx context.Context, lock FileLock) error {
	for i := 0; i < lockMaxRetries; i++ {
		locked, err := lock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		if locked {
			return nil
		}

		// Wait before retrying
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	return fmt.Errorf("failed to acquire lock after %d attempts", lockMaxRetries)
}
