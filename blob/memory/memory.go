// Package memory provides an in-memory blob store implementation for
// testing.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/carlfranklin/BlobRepositoryDemo/blob"
)

type objectKey struct {
	container string
	name      string
}

// Store is an in-memory implementation of blob.Store. Committed objects
// and staged blocks live in separate maps, so an uncommitted upload is
// never visible to readers.
type Store struct {
	mu         sync.RWMutex
	containers map[string]bool
	objects    map[objectKey][]byte
	staged     map[objectKey]map[string][]byte
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		containers: make(map[string]bool),
		objects:    make(map[objectKey][]byte),
		staged:     make(map[objectKey]map[string][]byte),
	}
}

// EnsureContainer implements blob.Store.
func (s *Store) EnsureContainer(ctx context.Context, container string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.containers[container] = true
	return nil
}

// PutBlock implements blob.Store.
func (s *Store) PutBlock(ctx context.Context, container, name, blockID string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.containers[container] {
		return blob.WrapError(blob.CodeContainerNotFound, false,
			fmt.Errorf("container %q does not exist", container))
	}

	key := objectKey{container, name}
	if s.staged[key] == nil {
		s.staged[key] = make(map[string][]byte)
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	s.staged[key][blockID] = copied
	return nil
}

// CommitBlockList implements blob.Store.
func (s *Store) CommitBlockList(ctx context.Context, container, name string, blockIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.containers[container] {
		return blob.WrapError(blob.CodeContainerNotFound, false,
			fmt.Errorf("container %q does not exist", container))
	}

	key := objectKey{container, name}
	blocks := s.staged[key]

	var assembled []byte
	for _, id := range blockIDs {
		data, ok := blocks[id]
		if !ok {
			return blob.WrapError(blob.CodeBlockNotFound, false,
				fmt.Errorf("block %q was not staged for %q", id, name))
		}
		assembled = append(assembled, data...)
	}
	if assembled == nil {
		assembled = []byte{}
	}

	s.objects[key] = assembled
	delete(s.staged, key)
	return nil
}

// AbortBlockList implements blob.Store.
func (s *Store) AbortBlockList(ctx context.Context, container, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.staged, objectKey{container, name})
	return nil
}

// Get implements blob.Store.
func (s *Store) Get(ctx context.Context, container, name string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.containers[container] {
		return nil, 0, blob.WrapError(blob.CodeContainerNotFound, false,
			fmt.Errorf("container %q does not exist", container))
	}

	data, ok := s.objects[objectKey{container, name}]
	if !ok {
		return nil, 0, blob.WrapError(blob.CodeObjectNotFound, false,
			fmt.Errorf("object %q does not exist", name))
	}

	copied := make([]byte, len(data))
	copy(copied, data)
	return io.NopCloser(bytes.NewReader(copied)), int64(len(copied)), nil
}

// Remove implements blob.Store. Removing a missing object is not an
// error, matching object storage delete semantics.
func (s *Store) Remove(ctx context.Context, container, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectKey{container, name})
	return nil
}

// Seed stores an object directly, bypassing the block protocol. The
// container is created when missing. Intended for test setup.
func (s *Store) Seed(container, name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.containers[container] = true
	copied := make([]byte, len(data))
	copy(copied, data)
	s.objects[objectKey{container, name}] = copied
}

// Object reports the committed bytes for an object, if present.
func (s *Store) Object(container, name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[objectKey{container, name}]
	if !ok {
		return nil, false
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, true
}

// StagedBlocks reports how many uncommitted blocks exist for an object.
func (s *Store) StagedBlocks(container, name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.staged[objectKey{container, name}])
}
