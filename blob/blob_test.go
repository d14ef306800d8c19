package blob_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlfranklin/BlobRepositoryDemo/blob"
)

func TestFormatBlockID(t *testing.T) {
	// The first block id is fixed by the wire contract.
	assert.Equal(t, "MDAwMDAwMQ==", blob.FormatBlockID(1))

	ids := map[string]bool{}
	for n := 1; n <= 50; n++ {
		id := blob.FormatBlockID(n)
		assert.False(t, ids[id], "id for %d collides", n)
		ids[id] = true

		got, err := blob.ParseBlockID(id)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestParseBlockIDRejectsGarbage(t *testing.T) {
	_, err := blob.ParseBlockID("not base64!!")
	assert.Error(t, err)
}

func TestErrorClassification(t *testing.T) {
	notFound := blob.WrapError(blob.CodeObjectNotFound, false, assert.AnError)
	assert.True(t, blob.IsNotFound(notFound))
	assert.False(t, blob.IsRetryable(notFound))

	timeout := blob.WrapError(blob.CodeTimeout, true, assert.AnError)
	assert.False(t, blob.IsNotFound(timeout))
	assert.True(t, blob.IsRetryable(timeout))

	assert.False(t, blob.IsNotFound(assert.AnError))
	assert.False(t, blob.IsRetryable(nil))
}
