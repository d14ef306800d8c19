// Package minio provides a blob.Store backed by MinIO or any
// S3-compatible endpoint, using the minio-go SDK.
//
// Blocks are staged as individual objects under "<name>.blocks/<id>".
// Committing streams the staged blocks, in list order, into the final
// object with a single put, then removes the staging objects. The final
// put is the only step visible to readers.
package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/carlfranklin/BlobRepositoryDemo/blob"
)

const contentType = "application/octet-stream"

// Config carries connection settings for a MinIO/S3-compatible endpoint.
type Config struct {
	// Endpoint is the server address, with or without a scheme.
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UseSSL          bool
}

// Store implements blob.Store over minio-go.
type Store struct {
	client *minio.Client
	region string
}

// New creates a Store from config.
func New(cfg Config) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, blob.WrapError(blob.CodeUnreachable, false,
			fmt.Errorf("endpoint is required"))
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, blob.WrapError(blob.CodeAuthInvalid, false,
			fmt.Errorf("credentials are required"))
	}

	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, blob.WrapError(blob.CodeUnreachable, true,
			fmt.Errorf("failed to create minio client: %w", err))
	}

	return &Store{client: client, region: cfg.Region}, nil
}

// EnsureContainer implements blob.Store.
func (s *Store) EnsureContainer(ctx context.Context, container string) error {
	exists, err := s.client.BucketExists(ctx, container)
	if err != nil {
		return classifyError(err, blob.CodeUnreachable)
	}
	if exists {
		return nil
	}

	err = s.client.MakeBucket(ctx, container, minio.MakeBucketOptions{Region: s.region})
	if err != nil {
		// Lost a creation race; the container exists either way.
		switch minio.ToErrorResponse(err).Code {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return nil
		}
		return classifyError(err, blob.CodeWriteFailed)
	}
	return nil
}

// PutBlock implements blob.Store.
func (s *Store) PutBlock(ctx context.Context, container, name, blockID string, data []byte) error {
	_, err := s.client.PutObject(ctx, container, stagingKey(name, blockID),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return classifyError(err, blob.CodeWriteFailed)
	}
	return nil
}

// CommitBlockList implements blob.Store.
func (s *Store) CommitBlockList(ctx context.Context, container, name string, blockIDs []string) error {
	staged, err := s.listStaged(ctx, container, name)
	if err != nil {
		return err
	}

	var total int64
	for _, id := range blockIDs {
		size, ok := staged[id]
		if !ok {
			return blob.WrapError(blob.CodeBlockNotFound, false,
				fmt.Errorf("block %q was not staged for %q", id, name))
		}
		total += size
	}

	readers := make([]io.Reader, 0, len(blockIDs))
	closers := make([]io.Closer, 0, len(blockIDs))
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	for _, id := range blockIDs {
		obj, err := s.client.GetObject(ctx, container, stagingKey(name, id), minio.GetObjectOptions{})
		if err != nil {
			return classifyError(err, blob.CodeReadFailed)
		}
		readers = append(readers, obj)
		closers = append(closers, obj)
	}

	_, err = s.client.PutObject(ctx, container, name,
		io.MultiReader(readers...), total,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return classifyError(err, blob.CodeWriteFailed)
	}

	return s.removeStaged(ctx, container, name)
}

// AbortBlockList implements blob.Store.
func (s *Store) AbortBlockList(ctx context.Context, container, name string) error {
	return s.removeStaged(ctx, container, name)
}

// Get implements blob.Store.
func (s *Store) Get(ctx context.Context, container, name string) (io.ReadCloser, int64, error) {
	info, err := s.client.StatObject(ctx, container, name, minio.StatObjectOptions{})
	if err != nil {
		return nil, 0, classifyError(err, blob.CodeReadFailed)
	}

	obj, err := s.client.GetObject(ctx, container, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, classifyError(err, blob.CodeReadFailed)
	}
	return obj, info.Size, nil
}

// Remove implements blob.Store.
func (s *Store) Remove(ctx context.Context, container, name string) error {
	err := s.client.RemoveObject(ctx, container, name, minio.RemoveObjectOptions{})
	if err != nil {
		return classifyError(err, blob.CodeWriteFailed)
	}
	return nil
}

// listStaged returns the staged block ids and sizes for an object.
func (s *Store) listStaged(ctx context.Context, container, name string) (map[string]int64, error) {
	prefix := stagingPrefix(name)
	staged := make(map[string]int64)
	for obj := range s.client.ListObjects(ctx, container, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, classifyError(obj.Err, blob.CodeReadFailed)
		}
		staged[strings.TrimPrefix(obj.Key, prefix)] = obj.Size
	}
	return staged, nil
}

// removeStaged deletes every staging object for a name.
func (s *Store) removeStaged(ctx context.Context, container, name string) error {
	prefix := stagingPrefix(name)
	for obj := range s.client.ListObjects(ctx, container, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return classifyError(obj.Err, blob.CodeReadFailed)
		}
		if err := s.client.RemoveObject(ctx, container, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return classifyError(err, blob.CodeWriteFailed)
		}
	}
	return nil
}

func stagingKey(name, blockID string) string {
	return stagingPrefix(name) + blockID
}

func stagingPrefix(name string) string {
	return name + ".blocks/"
}

// classifyError converts minio-go failures to *blob.Error, falling back
// to the given code when nothing more specific applies.
func classifyError(err error, fallback string) *blob.Error {
	if err == nil {
		return nil
	}

	switch minio.ToErrorResponse(err).Code {
	case "NoSuchBucket":
		return blob.WrapError(blob.CodeContainerNotFound, false, err)
	case "NoSuchKey":
		return blob.WrapError(blob.CodeObjectNotFound, false, err)
	case "AccessDenied":
		return blob.WrapError(blob.CodePermissionDenied, false, err)
	case "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return blob.WrapError(blob.CodeAuthInvalid, false, err)
	case "RequestTimeout":
		return blob.WrapError(blob.CodeTimeout, true, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return blob.WrapError(blob.CodeTimeout, true, err)
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
		return blob.WrapError(blob.CodeTimeout, true, err)
	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "unreachable"):
		return blob.WrapError(blob.CodeUnreachable, true, err)
	case strings.Contains(errStr, "does not exist") || strings.Contains(errStr, "not found"):
		return blob.WrapError(blob.CodeObjectNotFound, false, err)
	}

	return blob.WrapError(fallback, true, err)
}
