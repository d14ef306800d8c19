package s3

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlfranklin/BlobRepositoryDemo/blob"
)

func TestNewAppliesRetryDefaults(t *testing.T) {
	s, err := New(context.Background(), Config{
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, s.retry.maxRetries)
	assert.Equal(t, 100*time.Millisecond, s.retry.initialBackoff)
	assert.Equal(t, 2*time.Second, s.retry.maxBackoff)
	assert.Equal(t, 2.0, s.retry.backoffMultiplier)
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{Region: "us-east-1"})
	require.Error(t, err)

	var be *blob.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, blob.CodeAuthInvalid, be.Code)
}

func TestCalculateBackoff(t *testing.T) {
	s := &Store{retry: retryConfig{
		initialBackoff:    100 * time.Millisecond,
		maxBackoff:        2 * time.Second,
		backoffMultiplier: 2.0,
	}}

	assert.Equal(t, 100*time.Millisecond, s.calculateBackoff(0))
	assert.Equal(t, 200*time.Millisecond, s.calculateBackoff(1))
	assert.Equal(t, 400*time.Millisecond, s.calculateBackoff(2))
	// Capped.
	assert.Equal(t, 2*time.Second, s.calculateBackoff(10))
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	s := &Store{retry: retryConfig{
		maxRetries:        3,
		initialBackoff:    time.Millisecond,
		maxBackoff:        time.Millisecond,
		backoffMultiplier: 1.0,
	}}

	calls := 0
	err := s.withRetry(context.Background(), func(ctx context.Context) error {
		calls++
		return context.Canceled
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "permanent errors must not be retried")
}

func TestWithRetryRetriesTransientError(t *testing.T) {
	s := &Store{retry: retryConfig{
		maxRetries:        2,
		initialBackoff:    time.Millisecond,
		maxBackoff:        time.Millisecond,
		backoffMultiplier: 1.0,
	}}

	calls := 0
	err := s.withRetry(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(context.Canceled))
	assert.False(t, isRetryableError(context.DeadlineExceeded))
	// Unclassified errors default to retryable.
	assert.True(t, isRetryableError(errors.New("connection reset by peer")))
}

func TestStagingKeys(t *testing.T) {
	assert.Equal(t, "Member.json.blocks/", stagingPrefix("Member.json"))
	assert.Equal(t, "Member.json.blocks/MDAwMDAwMQ==",
		stagingKey("Member.json", blob.FormatBlockID(1)))
}
