package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/carlfranklin/BlobRepositoryDemo/query"
)

// memoryRepository implements Repository with no backing mirror. The
// collection lives and dies with the process.
type memoryRepository[K comparable, T any] struct {
	keyFn       KeyFunc[K, T]
	lockManager *LockManager
	records     []T
}

// NewMemoryRepository creates a process-local repository seeded with
// the given records. Seeding follows Insert rules, so nil-like records
// and duplicate keys are rejected.
func NewMemoryRepository[K comparable, T any](keyFn KeyFunc[K, T], seed ...T) (Repository[K, T], error) {
	if keyFn == nil {
		return nil, fmt.Errorf("key function is required")
	}
	r := &memoryRepository[K, T]{
		keyFn:       keyFn,
		lockManager: NewLockManager(),
		records:     []T{},
	}
	for _, item := range seed {
		if _, err := r.Insert(context.Background(), item); err != nil {
			return nil, fmt.Errorf("failed to seed record: %w", err)
		}
	}
	return r, nil
}

func (r *memoryRepository[K, T]) GetAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.snapshot(), nil
}

func (r *memoryRepository[K, T]) Get(ctx context.Context, opts query.Options[T]) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return query.Apply(r.snapshot(), opts)
}

func (r *memoryRepository[K, T]) GetByID(ctx context.Context, id K) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	var (
		out   T
		found bool
	)
	_ = r.lockManager.Execute(ReadOperation, func() error {
		if i := r.indexOfKey(id); i >= 0 {
			out = r.records[i]
			found = true
		}
		return nil
	})
	if !found {
		return zero, ErrNotFound
	}
	return out, nil
}

func (r *memoryRepository[K, T]) Insert(ctx context.Context, item T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if IsNilRecord(item) {
		return zero, ErrNilRecord
	}

	key := r.keyFn(item)
	var dup bool
	_ = r.lockManager.Execute(WriteOperation, func() error {
		if r.indexOfKey(key) >= 0 {
			dup = true
			return nil
		}
		r.records = append(r.records, item)
		return nil
	})
	if dup {
		return zero, ErrDuplicateKey
	}
	return item, nil
}

func (r *memoryRepository[K, T]) Update(ctx context.Context, item T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if IsNilRecord(item) {
		return zero, ErrNilRecord
	}

	key := r.keyFn(item)
	var found bool
	_ = r.lockManager.Execute(WriteOperation, func() error {
		if i := r.indexOfKey(key); i >= 0 {
			r.records[i] = item
			found = true
		}
		return nil
	})
	if !found {
		return zero, ErrNotFound
	}
	return item, nil
}

func (r *memoryRepository[K, T]) Delete(ctx context.Context, item T) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var removed bool
	_ = r.lockManager.Execute(WriteOperation, func() error {
		for i := range r.records {
			if reflect.DeepEqual(r.records[i], item) {
				r.records = append(r.records[:i], r.records[i+1:]...)
				removed = true
				break
			}
		}
		return nil
	})
	return removed, nil
}

func (r *memoryRepository[K, T]) DeleteByID(ctx context.Context, id K) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var removed bool
	_ = r.lockManager.Execute(WriteOperation, func() error {
		if i := r.indexOfKey(id); i >= 0 {
			r.records = append(r.records[:i], r.records[i+1:]...)
			removed = true
		}
		return nil
	})
	return removed, nil
}

func (r *memoryRepository[K, T]) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_ = r.lockManager.Execute(WriteOperation, func() error {
		r.records = []T{}
		return nil
	})
	return nil
}

func (r *memoryRepository[K, T]) snapshot() []T {
	var out []T
	_ = r.lockManager.Execute(ReadOperation, func() error {
		out = make([]T, len(r.records))
		copy(out, r.records)
		return nil
	})
	return out
}

// indexOfKey returns the position of the record carrying id, or -1.
// Callers must hold the collection lock.
func (r *memoryRepository[K, T]) indexOfKey(id K) int {
	for i := range r.records {
		if r.keyFn(r.records[i]) == id {
			return i
		}
	}
	return -1
}
