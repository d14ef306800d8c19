package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/carlfranklin/BlobRepositoryDemo/api"
	"github.com/carlfranklin/BlobRepositoryDemo/query"
	"github.com/carlfranklin/BlobRepositoryDemo/repository"
)

var _ repository.Repository[string, struct{}] = (*Client[string, struct{}])(nil)

// queryRequest is the serializable query shape sent to the service.
type queryRequest struct {
	Filters []query.Filter      `json:"filters,omitempty"`
	OrderBy []query.OrderClause `json:"orderBy,omitempty"`
	Offset  *int                `json:"offset,omitempty"`
	Limit   *int                `json:"limit,omitempty"`
}

// GetAll returns every record in the remote collection.
func (c *Client[K, T]) GetAll(ctx context.Context) ([]T, error) {
	var out api.ListResponse[T]
	if err := c.do(ctx, http.MethodGet, c.resourcePath(), nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, envelopeError(out.ErrorMessages)
	}
	return out.Data, nil
}

// Get evaluates the query on the server. Options carrying Go functions
// cannot cross the wire and fail fast with ErrNotSupported before any
// request is made.
func (c *Client[K, T]) Get(ctx context.Context, opts query.Options[T]) ([]T, error) {
	if opts.HasFunctions() {
		return nil, fmt.Errorf("%w: function predicates and comparators cannot be serialized, use Filters and OrderBy", repository.ErrNotSupported)
	}

	payload := queryRequest{
		Filters: opts.Filters,
		OrderBy: opts.OrderBy,
		Offset:  opts.Offset,
		Limit:   opts.Limit,
	}
	var out api.ListResponse[T]
	if err := c.do(ctx, http.MethodPost, c.resourcePath()+"/query", payload, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, envelopeError(out.ErrorMessages)
	}
	return out.Data, nil
}

// GetByID returns the record with the given key, or ErrNotFound.
func (c *Client[K, T]) GetByID(ctx context.Context, id K) (T, error) {
	var zero T
	var out api.Response[T]
	if err := c.do(ctx, http.MethodGet, c.recordPath(id), nil, &out); err != nil {
		return zero, err
	}
	if !out.Success {
		return zero, envelopeError(out.ErrorMessages)
	}
	return out.Data, nil
}

// Insert adds a record to the remote collection and returns the stored
// record.
func (c *Client[K, T]) Insert(ctx context.Context, item T) (T, error) {
	var zero T
	if repository.IsNilRecord(item) {
		return zero, repository.ErrNilRecord
	}

	var out api.Response[T]
	if err := c.do(ctx, http.MethodPost, c.resourcePath(), item, &out); err != nil {
		return zero, err
	}
	if !out.Success {
		return zero, envelopeError(out.ErrorMessages)
	}
	return out.Data, nil
}

// Update replaces the record sharing the item's key and returns the
// stored record.
func (c *Client[K, T]) Update(ctx context.Context, item T) (T, error) {
	var zero T
	if repository.IsNilRecord(item) {
		return zero, repository.ErrNilRecord
	}

	var out api.Response[T]
	if err := c.do(ctx, http.MethodPut, c.resourcePath(), item, &out); err != nil {
		return zero, err
	}
	if !out.Success {
		return zero, envelopeError(out.ErrorMessages)
	}
	return out.Data, nil
}

// Delete removes the record structurally equal to item and reports
// whether one was removed.
func (c *Client[K, T]) Delete(ctx context.Context, item T) (bool, error) {
	var out api.Response[bool]
	if err := c.do(ctx, http.MethodPost, c.resourcePath()+"/delete", item, &out); err != nil {
		return false, err
	}
	if !out.Success {
		return false, envelopeError(out.ErrorMessages)
	}
	return out.Data, nil
}

// DeleteByID removes the record with the given key and reports whether
// one was removed.
func (c *Client[K, T]) DeleteByID(ctx context.Context, id K) (bool, error) {
	var out api.Response[bool]
	if err := c.do(ctx, http.MethodDelete, c.recordPath(id), nil, &out); err != nil {
		return false, err
	}
	if !out.Success {
		return false, envelopeError(out.ErrorMessages)
	}
	return out.Data, nil
}

// DeleteAll removes every record in the remote collection.
func (c *Client[K, T]) DeleteAll(ctx context.Context) error {
	var out api.Response[bool]
	if err := c.do(ctx, http.MethodDelete, c.resourcePath(), nil, &out); err != nil {
		return err
	}
	if !out.Success {
		return envelopeError(out.ErrorMessages)
	}
	return nil
}
