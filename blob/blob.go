// Package blob implements the chunked block-upload protocol used to
// persist snapshot documents in object storage.
//
// Uploads are split into fixed-size blocks. Each block is staged
// individually under a base64-encoded sequence id, and a final ordered
// commit assembles the staged blocks into the destination object. The
// commit is the only atomic step: readers never observe a partially
// written object.
package blob

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
)

// BlockSize is the fixed upload chunk size in bytes. Every block except
// the last carries exactly this many bytes; the last carries the
// remainder, which is zero when the source size is an exact multiple.
const BlockSize = 1_000_000

// FormatBlockID returns the wire id for the n-th block (1-based): the
// base64 encoding of the sequence number zero-padded to seven decimal
// digits, so the first block is always base64("0000001").
func FormatBlockID(n int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%07d", n)))
}

// ParseBlockID decodes a wire block id back to its sequence number.
func ParseBlockID(id string) (int, error) {
	raw, err := base64.StdEncoding.DecodeString(id)
	if err != nil {
		return 0, fmt.Errorf("invalid block id %q: %w", id, err)
	}
	var n int
	if _, err := fmt.Sscanf(string(raw), "%07d", &n); err != nil {
		return 0, fmt.Errorf("invalid block id %q: %w", id, err)
	}
	return n, nil
}

// Store is the backend contract for block staging and object access.
// Implementations live in blob/minio, blob/s3 and blob/memory.
type Store interface {
	// EnsureContainer creates the container if it does not already
	// exist. An existing container is not an error.
	EnsureContainer(ctx context.Context, container string) error

	// PutBlock stages one uncommitted block for the named object.
	// Staged blocks are invisible to readers until committed. The data
	// slice is only valid for the duration of the call; implementations
	// must copy it if they retain it.
	PutBlock(ctx context.Context, container, name, blockID string, data []byte) error

	// CommitBlockList assembles the staged blocks, in the given order,
	// into the final object, replacing any previous version.
	CommitBlockList(ctx context.Context, container, name string, blockIDs []string) error

	// AbortBlockList discards any staged blocks for the named object.
	AbortBlockList(ctx context.Context, container, name string) error

	// Get opens the named object for reading and reports its size.
	Get(ctx context.Context, container, name string) (io.ReadCloser, int64, error)

	// Remove deletes the named object.
	Remove(ctx context.Context, container, name string) error
}

// Progress reports cumulative upload progress after each staged block.
type Progress struct {
	// Sent is the number of source bytes staged so far.
	Sent int64
	// Total is the full source size in bytes.
	Total int64
}

// ProgressFunc receives a Progress notification after every block,
// including the trailing zero-length block of exact-multiple sources.
type ProgressFunc func(Progress)
