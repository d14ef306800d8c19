package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/carlfranklin/BlobRepositoryDemo/blob"
	"github.com/carlfranklin/BlobRepositoryDemo/internal/validation"
	"github.com/carlfranklin/BlobRepositoryDemo/metrics"
	"github.com/carlfranklin/BlobRepositoryDemo/query"
)

// blobRepository implements Repository against a single JSON array
// document in object storage. The whole collection lives in memory;
// the mirror is read when the snapshot goes stale and rewritten after
// every mutation.
type blobRepository[K comparable, T any] struct {
	client     *blob.Client
	container  string
	objectName string
	keyFn      KeyFunc[K, T]

	cfg    config
	stager *stager

	lockManager *LockManager
	records     []T
	lastLoad    time.Time

	// refreshMu serializes mirror refreshes so a stampede of stale
	// readers triggers a single reload.
	refreshMu sync.Mutex

	// saveMu serializes stage-and-upload cycles; saveTickets bounds
	// how many may be pending before writers get ErrStoreBusy.
	saveMu      sync.Mutex
	saveTickets chan struct{}
}

// NewBlobRepository creates a repository mirroring a JSON document in
// the given container. The object name defaults to the record type's
// name plus ".json" and can be overridden with WithObjectName. The
// mirror is read once during construction; a missing document starts
// an empty collection, and an unreachable mirror starts empty too and
// is retried on first use. A document that exists but cannot be
// decoded fails construction.
func NewBlobRepository[K comparable, T any](ctx context.Context, client *blob.Client, container string, keyFn KeyFunc[K, T], opts ...Option) (Repository[K, T], error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if container == "" {
		return nil, fmt.Errorf("container is required")
	}
	if err := validation.ValidateContainerName(container); err != nil {
		return nil, fmt.Errorf("invalid container: %w", err)
	}
	if keyFn == nil {
		return nil, fmt.Errorf("key function is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.saveQueueDepth < 1 {
		cfg.saveQueueDepth = 1
	}

	objectName := cfg.objectName
	if objectName == "" {
		objectName = deriveObjectName[T]()
	}
	if err := validation.ValidateObjectName(objectName); err != nil {
		return nil, fmt.Errorf("invalid object name: %w", err)
	}

	r := &blobRepository[K, T]{
		client:      client,
		container:   container,
		objectName:  objectName,
		keyFn:       keyFn,
		cfg:         cfg,
		stager:      newStager(cfg.fs, cfg.lockFactory, cfg.stagingDir),
		lockManager: NewLockManager(),
		saveTickets: make(chan struct{}, cfg.saveQueueDepth),
	}

	if err := r.reload(ctx); err != nil {
		var se *SerializationError
		if errors.As(err, &se) {
			// The document exists but cannot be decoded. Starting
			// empty would let the next save overwrite it.
			return nil, err
		}
		r.cfg.logger.Warn("initial load failed, starting empty",
			"container", container,
			"object", objectName,
			"error", err)
	}

	return r, nil
}

func (r *blobRepository[K, T]) GetAll(ctx context.Context) ([]T, error) {
	if err := r.refreshIfStale(ctx); err != nil {
		return nil, err
	}
	return r.snapshot(), nil
}

func (r *blobRepository[K, T]) Get(ctx context.Context, opts query.Options[T]) ([]T, error) {
	if err := r.refreshIfStale(ctx); err != nil {
		return nil, err
	}
	// Predicates and comparators run on a copy, outside the
	// collection lock, so a slow or panicking callback cannot stall
	// other operations.
	return query.Apply(r.snapshot(), opts)
}

func (r *blobRepository[K, T]) GetByID(ctx context.Context, id K) (T, error) {
	var zero T
	if err := r.refreshIfStale(ctx); err != nil {
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

func (r *blobRepository[K, T]) Insert(ctx context.Context, item T) (T, error) {
	var zero T
	if IsNilRecord(item) {
		return zero, ErrNilRecord
	}
	if err := r.refreshIfStale(ctx); err != nil {
		return zero, err
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

	// On save failure the record stays in memory and rides along with
	// the next successful save.
	if err := r.persistSnapshot(ctx); err != nil {
		return zero, err
	}
	return item, nil
}

func (r *blobRepository[K, T]) Update(ctx context.Context, item T) (T, error) {
	var zero T
	if IsNilRecord(item) {
		return zero, ErrNilRecord
	}
	if err := r.refreshIfStale(ctx); err != nil {
		return zero, err
	}

	key := r.keyFn(item)
	var found bool
	_ = r.lockManager.Execute(WriteOperation, func() error {
		if i := r.indexOfKey(key); i >= 0 {
			// Replace in place so collection order is preserved.
			r.records[i] = item
			found = true
		}
		return nil
	})
	if !found {
		return zero, ErrNotFound
	}

	if err := r.persistSnapshot(ctx); err != nil {
		return zero, err
	}
	return item, nil
}

func (r *blobRepository[K, T]) Delete(ctx context.Context, item T) (bool, error) {
	if err := r.refreshIfStale(ctx); err != nil {
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
	if !removed {
		return false, nil
	}

	// The bool stays truthful even when the save fails: the record is
	// gone from memory.
	if err := r.persistSnapshot(ctx); err != nil {
		return true, err
	}
	return true, nil
}

func (r *blobRepository[K, T]) DeleteByID(ctx context.Context, id K) (bool, error) {
	if err := r.refreshIfStale(ctx); err != nil {
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
	if !removed {
		return false, nil
	}

	if err := r.persistSnapshot(ctx); err != nil {
		return true, err
	}
	return true, nil
}

func (r *blobRepository[K, T]) DeleteAll(ctx context.Context) error {
	if err := r.refreshIfStale(ctx); err != nil {
		return err
	}

	_ = r.lockManager.Execute(WriteOperation, func() error {
		r.records = []T{}
		return nil
	})

	return r.persistSnapshot(ctx)
}

// refreshIfStale reloads the mirror when the cached snapshot is older
// than the TTL. When a refresh fails but cached data exists, the stale
// snapshot is served and the reload is retried by the next operation.
// A failure with nothing cached surfaces as an error.
func (r *blobRepository[K, T]) refreshIfStale(ctx context.Context) error {
	if !r.isStale() {
		r.cfg.metrics.RecordRefresh(metrics.RefreshFresh)
		return nil
	}

	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	// Another reader may have refreshed while this one waited.
	if !r.isStale() {
		r.cfg.metrics.RecordRefresh(metrics.RefreshFresh)
		return nil
	}

	if err := r.reload(ctx); err != nil {
		if r.hasLoaded() {
			r.cfg.metrics.RecordRefresh(metrics.RefreshStale)
			r.cfg.logger.Warn("refresh failed, serving cached snapshot",
				"container", r.container,
				"object", r.objectName,
				"error", err)
			return nil
		}
		return err
	}

	r.cfg.metrics.RecordRefresh(metrics.RefreshReload)
	return nil
}

// reload replaces the in-memory collection with the mirror's contents.
// A missing document is an empty collection, not an error.
func (r *blobRepository[K, T]) reload(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { r.cfg.metrics.ObserveOperation("load", time.Since(start), err) }()

	data, fetchErr := r.client.Fetch(ctx, r.container, r.objectName)
	switch {
	case blob.IsNotFound(fetchErr):
		data = nil
	case fetchErr != nil:
		return &StorageError{Op: "load", Transient: blob.IsRetryable(fetchErr), Err: fetchErr}
	}

	records := []T{}
	if len(data) > 0 {
		if uerr := json.Unmarshal(data, &records); uerr != nil {
			return &SerializationError{Op: "unmarshal", Err: uerr}
		}
		if records == nil {
			records = []T{}
		}
	}

	_ = r.lockManager.Execute(WriteOperation, func() error {
		r.records = records
		r.lastLoad = r.cfg.timeFunc()
		return nil
	})

	r.cfg.logger.Debug("snapshot loaded",
		"container", r.container,
		"object", r.objectName,
		"records", len(records))
	return nil
}

// persistSnapshot serializes the collection and uploads it, one save
// at a time. When the pending-save queue is full the mutation is kept
// in memory and the caller gets ErrStoreBusy immediately.
func (r *blobRepository[K, T]) persistSnapshot(ctx context.Context) error {
	select {
	case r.saveTickets <- struct{}{}:
	default:
		return ErrStoreBusy
	}
	defer func() { <-r.saveTickets }()

	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	if r.cfg.saveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.saveTimeout)
		defer cancel()
	}

	return r.save(ctx)
}

// save runs one stage-and-upload cycle: marshal the current
// collection, stage it locally under a file lock, then push it through
// the block protocol.
func (r *blobRepository[K, T]) save(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { r.cfg.metrics.ObserveOperation("save", time.Since(start), err) }()

	data, err := r.marshalSnapshot()
	if err != nil {
		return err
	}

	path, err := r.stager.Write(ctx, r.objectName, data)
	if err != nil {
		return &StorageError{Op: "save", Transient: errors.Is(err, context.DeadlineExceeded), Err: err}
	}

	if err := r.client.Upload(ctx, r.container, path, r.objectName); err != nil {
		return &StorageError{Op: "save", Transient: blob.IsRetryable(err), Err: err}
	}

	r.cfg.metrics.RecordSaveBytes(int64(len(data)))
	r.cfg.logger.Debug("snapshot saved",
		"container", r.container,
		"object", r.objectName,
		"bytes", len(data))
	return nil
}

// marshalSnapshot encodes a copy of the collection. An empty
// collection encodes as an empty JSON array, never null.
func (r *blobRepository[K, T]) marshalSnapshot() ([]byte, error) {
	snapshot := r.snapshot()
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, &SerializationError{Op: "marshal", Err: err}
	}
	return data, nil
}

// snapshot copies the collection under the read lock.
func (r *blobRepository[K, T]) snapshot() []T {
	var out []T
	_ = r.lockManager.Execute(ReadOperation, func() error {
		out = make([]T, len(r.records))
		copy(out, r.records)
		return nil
	})
	return out
}

// isStale reports whether the cached snapshot needs a refresh. A zero
// lastLoad means nothing was ever loaded.
func (r *blobRepository[K, T]) isStale() bool {
	var stale bool
	_ = r.lockManager.Execute(ReadOperation, func() error {
		stale = r.lastLoad.IsZero() || r.cfg.timeFunc().Sub(r.lastLoad) >= r.cfg.ttl
		return nil
	})
	return stale
}

func (r *blobRepository[K, T]) hasLoaded() bool {
	var loaded bool
	_ = r.lockManager.Execute(ReadOperation, func() error {
		loaded = !r.lastLoad.IsZero()
		return nil
	})
	return loaded
}

// indexOfKey returns the position of the record carrying id, or -1.
// Callers must hold the collection lock.
func (r *blobRepository[K, T]) indexOfKey(id K) int {
	for i := range r.records {
		if r.keyFn(r.records[i]) == id {
			return i
		}
	}
	return -1
}

// deriveObjectName names the mirror document after the record type.
func deriveObjectName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name + ".json"
	}
	return "records.json"
}

// IsNilRecord reports whether item is nil or a nil pointer, map,
// slice, interface, function or channel. Repository implementations
// use it to reject such records from Insert and Update.
func IsNilRecord(item any) bool {
	if item == nil {
		return true
	}
	rv := reflect.ValueOf(item)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
