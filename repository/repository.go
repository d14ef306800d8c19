// Package repository provides a generic, cached entity store that
// mirrors a single remote JSON document held in object storage.
//
// A repository keeps its whole collection in memory and treats the
// remote document as the durable copy: reads are served from memory and
// refreshed when the cached snapshot is older than the configured TTL,
// while every mutation updates memory first and then rewrites the full
// document through the blob package's block-upload protocol. Records
// have a single identity produced by a caller-supplied key extractor;
// the collection never holds two records with the same key.
//
// Writers in other processes are resolved by last commit wins. A failed
// refresh serves the cached (possibly stale) snapshot and retries on
// the next operation; a failed save keeps the mutation in memory and
// reports a typed error, and the next successful save persists it.
package repository

import (
	"context"

	"github.com/carlfranklin/BlobRepositoryDemo/query"
)

// KeyFunc extracts a record's identity. Keys compare by value, so two
// distinct records carrying equal keys are the same entity.
type KeyFunc[K comparable, T any] func(T) K

// Repository is a keyed collection of records with snapshot
// persistence. Implementations: NewBlobRepository (object-storage
// mirror) and NewMemoryRepository (process-local, for tests and
// ephemeral data). All methods are safe for concurrent use.
type Repository[K comparable, T any] interface {
	// GetAll returns every record in the collection.
	GetAll(ctx context.Context) ([]T, error)

	// Get returns the records selected by the query options,
	// filtered before ordered.
	Get(ctx context.Context, opts query.Options[T]) ([]T, error)

	// GetByID returns the record with the given key, or ErrNotFound.
	GetByID(ctx context.Context, id K) (T, error)

	// Insert adds a record and persists the collection. It rejects
	// nil-like records with ErrNilRecord and an already-present key
	// with ErrDuplicateKey. The stored record is returned.
	Insert(ctx context.Context, item T) (T, error)

	// Update replaces the record sharing the item's key, in place, and
	// persists the collection. It rejects nil-like records with
	// ErrNilRecord and returns ErrNotFound when no record has that
	// key; nothing is persisted in either case.
	Update(ctx context.Context, item T) (T, error)

	// Delete removes the record structurally equal to item and
	// persists the collection. It reports whether a record was
	// removed; a miss is not an error and persists nothing.
	Delete(ctx context.Context, item T) (bool, error)

	// DeleteByID removes the record with the given key. It reports
	// whether a record was removed.
	DeleteByID(ctx context.Context, id K) (bool, error)

	// DeleteAll removes every record and persists the empty
	// collection. There is no undo.
	DeleteAll(ctx context.Context) error
}
