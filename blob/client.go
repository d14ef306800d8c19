package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Client drives the block protocol over a backend Store. A Client is
// safe for concurrent use as long as concurrent uploads target distinct
// object names.
type Client struct {
	store     Store
	logger    *slog.Logger
	progress  ProgressFunc
	opTimeout time.Duration
}

// ClientOption adjusts Client construction.
type ClientOption func(*Client)

// WithLogger sets the logger used for transfer diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithProgress registers a callback invoked after every staged block.
func WithProgress(fn ProgressFunc) ClientOption {
	return func(c *Client) {
		c.progress = fn
	}
}

// WithOperationTimeout bounds each backend call (and each download as a
// whole). Zero leaves only the caller's context in charge.
func WithOperationTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.opTimeout = d
	}
}

// NewClient creates a protocol client over the given backend.
func NewClient(store Store, opts ...ClientOption) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	c := &Client{store: store}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Upload streams the file at sourcePath into container/destName using
// the block protocol: the source is read in BlockSize chunks, each
// chunk is staged as one block, and a final ordered commit replaces the
// destination object. The container is created on demand before the
// first block. A source whose size is an exact multiple of BlockSize
// produces a trailing zero-length block, and an empty source produces a
// single zero-length block. On failure all staged blocks are discarded
// and the previous object version, if any, stays intact.
func (c *Client) Upload(ctx context.Context, container, sourcePath, destName string) error {
	f, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}
	total := info.Size()

	var (
		blockIDs []string
		sent     int64
		ensured  bool
		buf      = make([]byte, BlockSize)
	)

	for {
		n, readErr := io.ReadFull(f, buf)
		if readErr != nil && !errors.Is(readErr, io.EOF) && !errors.Is(readErr, io.ErrUnexpectedEOF) {
			c.discardStaged(ctx, container, destName, len(blockIDs))
			return fmt.Errorf("failed to read source file: %w", readErr)
		}

		if !ensured {
			if err := c.withTimeout(ctx, func(ctx context.Context) error {
				return c.store.EnsureContainer(ctx, container)
			}); err != nil {
				return fmt.Errorf("failed to ensure container %q: %w", container, err)
			}
			ensured = true
		}

		seq := len(blockIDs) + 1
		id := FormatBlockID(seq)
		if err := c.withTimeout(ctx, func(ctx context.Context) error {
			return c.store.PutBlock(ctx, container, destName, id, buf[:n])
		}); err != nil {
			c.discardStaged(ctx, container, destName, len(blockIDs))
			return fmt.Errorf("failed to stage block %d: %w", seq, err)
		}
		blockIDs = append(blockIDs, id)
		sent += int64(n)
		if c.progress != nil {
			c.progress(Progress{Sent: sent, Total: total})
		}

		// A short read marks the final block. An exact-multiple source
		// runs one extra iteration and stages an empty block first.
		if n < BlockSize {
			break
		}
	}

	if err := c.withTimeout(ctx, func(ctx context.Context) error {
		return c.store.CommitBlockList(ctx, container, destName, blockIDs)
	}); err != nil {
		c.discardStaged(ctx, container, destName, len(blockIDs))
		return fmt.Errorf("failed to commit %d blocks: %w", len(blockIDs), err)
	}

	c.logger.Debug("upload complete",
		"container", container,
		"object", destName,
		"bytes", total,
		"blocks", len(blockIDs))
	return nil
}

// Download copies container/sourceName into the file at destPath,
// replacing the file when it already exists.
func (c *Client) Download(ctx context.Context, container, sourceName, destPath string) error {
	if c.opTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opTimeout)
		defer cancel()
	}

	rc, size, err := c.store.Get(ctx, container, sourceName)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write destination file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}

	c.logger.Debug("download complete",
		"container", container,
		"object", sourceName,
		"bytes", size)
	return nil
}

// Fetch reads container/sourceName fully into memory. Callers that
// want the object on disk should use Download instead.
func (c *Client) Fetch(ctx context.Context, container, sourceName string) ([]byte, error) {
	if c.opTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opTimeout)
		defer cancel()
	}

	rc, size, err := c.store.Get(ctx, container, sourceName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, WrapError(CodeReadFailed, true, fmt.Errorf("failed to read object body: %w", err))
	}

	c.logger.Debug("fetch complete",
		"container", container,
		"object", sourceName,
		"bytes", size)
	return data, nil
}

// withTimeout runs one backend call under the per-operation timeout.
func (c *Client) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	if c.opTimeout <= 0 {
		return fn(ctx)
	}
	tctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return fn(tctx)
}

// discardStaged drops staged blocks after a failed upload, best effort.
// It runs detached from the caller's context so cleanup still happens
// when the failure was a cancellation.
func (c *Client) discardStaged(ctx context.Context, container, name string, staged int) {
	if staged == 0 {
		return
	}
	cleanupCtx := context.WithoutCancel(ctx)
	if err := c.withTimeout(cleanupCtx, func(ctx context.Context) error {
		return c.store.AbortBlockList(ctx, container, name)
	}); err != nil {
		c.logger.Warn("failed to discard staged blocks",
			"container", container,
			"object", name,
			"error", err)
	}
}
