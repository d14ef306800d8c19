// Package s3 provides a blob.Store backed by Amazon S3 (or any
// S3-compatible endpoint) using aws-sdk-go-v2.
//
// Blocks are staged as individual objects under "<name>.blocks/<id>".
// Committing spools the staged blocks, in list order, into a temporary
// file and uploads the assembled object with a single put, so readers
// only ever observe complete objects. Transient failures are retried
// with exponential backoff.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/carlfranklin/BlobRepositoryDemo/blob"
)

// Config carries connection and retry settings.
type Config struct {
	// Endpoint overrides the AWS endpoint, for S3-compatible services.
	// Empty uses the standard AWS endpoint for the region.
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// ForcePathStyle addresses buckets as path segments instead of
	// subdomains. Required by most non-AWS S3 implementations.
	ForcePathStyle bool

	// MaxRetries is the number of retries after the first attempt
	// (default 3).
	MaxRetries int
	// InitialBackoff is the delay before the first retry (default
	// 100ms); subsequent delays grow by BackoffMultiplier up to
	// MaxBackoff (defaults 2.0 and 2s).
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

type retryConfig struct {
	maxRetries        int
	initialBackoff    time.Duration
	maxBackoff        time.Duration
	backoffMultiplier float64
}

// Store implements blob.Store over the AWS SDK.
type Store struct {
	client *s3.Client
	region string
	retry  retryConfig
}

// New creates a Store from config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Region == "" {
		return nil, blob.WrapError(blob.CodeUnreachable, false,
			fmt.Errorf("region is required"))
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, blob.WrapError(blob.CodeAuthInvalid, false,
			fmt.Errorf("credentials are required"))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, blob.WrapError(blob.CodeUnreachable, true,
			fmt.Errorf("failed to load AWS config: %w", err))
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	retry := retryConfig{
		maxRetries:        cfg.MaxRetries,
		initialBackoff:    cfg.InitialBackoff,
		maxBackoff:        cfg.MaxBackoff,
		backoffMultiplier: cfg.BackoffMultiplier,
	}
	if retry.maxRetries == 0 {
		retry.maxRetries = 3
	}
	if retry.initialBackoff == 0 {
		retry.initialBackoff = 100 * time.Millisecond
	}
	if retry.maxBackoff == 0 {
		retry.maxBackoff = 2 * time.Second
	}
	if retry.backoffMultiplier == 0 {
		retry.backoffMultiplier = 2.0
	}

	return &Store{client: client, region: cfg.Region, retry: retry}, nil
}

// EnsureContainer implements blob.Store.
func (s *Store) EnsureContainer(ctx context.Context, container string) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(container),
	})
	if err == nil {
		return nil
	}
	if !isNotFoundError(err) {
		return classifyError(err, blob.CodeUnreachable)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(container)}
	// us-east-1 rejects an explicit location constraint.
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var taken *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &taken) {
			return nil
		}
		return classifyError(err, blob.CodeWriteFailed)
	}
	return nil
}

// PutBlock implements blob.Store.
func (s *Store) PutBlock(ctx context.Context, container, name, blockID string, data []byte) error {
	key := stagingKey(name, blockID)
	err := s.withRetry(ctx, func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(container),
			Key:    aws.String(key),
			Body:   bytes.NewReader(data),
		})
		return err
	})
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
	for _, id := range blockIDs {
		if _, ok := staged[id]; !ok {
			return blob.WrapError(blob.CodeBlockNotFound, false,
				fmt.Errorf("block %q was not staged for %q", id, name))
		}
	}

	tmp, err := os.CreateTemp("", "blobcommit-*")
	if err != nil {
		return blob.WrapError(blob.CodeWriteFailed, false,
			fmt.Errorf("failed to create spool file: %w", err))
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	for _, id := range blockIDs {
		if err := s.spoolBlock(ctx, container, stagingKey(name, id), tmp); err != nil {
			return err
		}
	}
	err = s.withRetry(ctx, func(ctx context.Context) error {
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return err
		}
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(container),
			Key:    aws.String(name),
			Body:   tmp,
		})
		return err
	})
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
	var out *s3.GetObjectOutput
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(container),
			Key:    aws.String(name),
		})
		return err
	})
	if err != nil {
		return nil, 0, classifyError(err, blob.CodeReadFailed)
	}
	return out.Body, aws.ToInt64(out.ContentLength), nil
}

// Remove implements blob.Store.
func (s *Store) Remove(ctx context.Context, container, name string) error {
	err := s.withRetry(ctx, func(ctx context.Context) error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(container),
			Key:    aws.String(name),
		})
		return err
	})
	if err != nil {
		return classifyError(err, blob.CodeWriteFailed)
	}
	return nil
}

// spoolBlock appends one staged block to the spool file.
func (s *Store) spoolBlock(ctx context.Context, container, key string, w io.Writer) error {
	err := s.withRetry(ctx, func(ctx context.Context) error {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(container),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		defer func() { _ = out.Body.Close() }()
		_, err = io.Copy(w, out.Body)
		return err
	})
	if err != nil {
		return classifyError(err, blob.CodeReadFailed)
	}
	return nil
}

// listStaged returns staged block ids and sizes for an object.
func (s *Store) listStaged(ctx context.Context, container, name string) (map[string]int64, error) {
	prefix := stagingPrefix(name)
	staged := make(map[string]int64)

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(container),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyError(err, blob.CodeReadFailed)
		}
		for _, obj := range page.Contents {
			staged[strings.TrimPrefix(aws.ToString(obj.Key), prefix)] = aws.ToInt64(obj.Size)
		}
	}
	return staged, nil
}

// removeStaged deletes every staging object for a name.
func (s *Store) removeStaged(ctx context.Context, container, name string) error {
	staged, err := s.listStaged(ctx, container, name)
	if err != nil {
		return err
	}
	for id := range staged {
		key := stagingKey(name, id)
		err := s.withRetry(ctx, func(ctx context.Context) error {
			_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(container),
				Key:    aws.String(key),
			})
			return err
		})
		if err != nil {
			return classifyError(err, blob.CodeWriteFailed)
		}
	}
	return nil
}

// withRetry runs fn, retrying transient failures with exponential
// backoff up to the configured attempt count.
func (s *Store) withRetry(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= s.retry.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.calculateBackoff(attempt - 1)):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !isRetryableError(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", s.retry.maxRetries+1, lastErr)
}

func (s *Store) calculateBackoff(attempt int) time.Duration {
	backoff := float64(s.retry.initialBackoff)
	for i := 0; i < attempt; i++ {
		backoff *= s.retry.backoffMultiplier
	}
	if backoff > float64(s.retry.maxBackoff) {
		backoff = float64(s.retry.maxBackoff)
	}
	return time.Duration(backoff)
}

// isRetryableError reports whether an SDK failure is worth retrying.
// Context cancellation, missing objects and rejected credentials are
// not; throttling, 5xx and network timeouts are.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "Throttling", "ThrottlingException", "RequestThrottled", "SlowDown":
			return true
		case "InternalError", "ServiceUnavailable", "RequestTimeout":
			return true
		}
		return false
	}

	return true
}

func isNotFoundError(err error) bool {
	var nf *types.NotFound
	var noBucket *types.NoSuchBucket
	var noKey *types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &noBucket) || errors.As(err, &noKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket", "NoSuchKey":
			return true
		}
	}
	return false
}

// classifyError converts SDK failures to *blob.Error, falling back to
// the given code when nothing more specific applies.
func classifyError(err error, fallback string) *blob.Error {
	if err == nil {
		return nil
	}

	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return blob.WrapError(blob.CodeContainerNotFound, false, err)
	}
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return blob.WrapError(blob.CodeObjectNotFound, false, err)
	}
	if isNotFoundError(err) {
		return blob.WrapError(blob.CodeObjectNotFound, false, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return blob.WrapError(blob.CodeTimeout, true, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied":
			return blob.WrapError(blob.CodePermissionDenied, false, err)
		case "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return blob.WrapError(blob.CodeAuthInvalid, false, err)
		case "RequestTimeout":
			return blob.WrapError(blob.CodeTimeout, true, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return blob.WrapError(blob.CodeTimeout, true, err)
		}
		return blob.WrapError(blob.CodeUnreachable, true, err)
	}

	return blob.WrapError(fallback, true, err)
}

func stagingKey(name, blockID string) string {
	return stagingPrefix(name) + blockID
}

func stagingPrefix(name string) string {
	return name + ".blocks/"
}
