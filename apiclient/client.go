// Package apiclient implements repository.Repository over HTTP against
// a service speaking the api package's envelope contract. It lets a
// program swap the blob-backed store for a remote one without touching
// calling code.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carlfranklin/BlobRepositoryDemo/api"
	"github.com/carlfranklin/BlobRepositoryDemo/repository"
)

// DefaultTimeout bounds each request made with the built-in HTTP
// client.
const DefaultTimeout = 30 * time.Second

// Option adjusts client construction.
type Option func(*config)

type config struct {
	httpClient *http.Client
	timeout    time.Duration
}

// WithHTTPClient sets the HTTP client used for requests. It overrides
// WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the built-in HTTP
// client.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// Client is a remote repository over one resource collection, such as
// "members". The server owns persistence; this client only moves
// envelopes.
type Client[K comparable, T any] struct {
	baseURL    string
	resource   string
	httpClient *http.Client
}

// New creates a client for baseURL's resource collection.
func New[K comparable, T any](baseURL, resource string, opts ...Option) (*Client[K, T], error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if resource == "" {
		return nil, fmt.Errorf("resource is required")
	}

	cfg := config{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: cfg.timeout}
	}

	return &Client[K, T]{
		baseURL:    strings.TrimRight(baseURL, "/"),
		resource:   strings.Trim(resource, "/"),
		httpClient: cfg.httpClient,
	}, nil
}

// do performs an HTTP request and decodes the response envelope.
func (c *Client[K, T]) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client[K, T]) resourcePath() string {
	return "/" + c.resource
}

func (c *Client[K, T]) recordPath(id K) string {
	return c.resourcePath() + "/" + url.PathEscape(fmt.Sprint(id))
}

// statusError maps an error response onto the repository error
// taxonomy. Not-found and conflict statuses become the matching
// sentinels so callers can switch on them as they would with a local
// repository.
func statusError(status int, body []byte) error {
	switch status {
	case http.StatusNotFound:
		return repository.ErrNotFound
	case http.StatusConflict:
		return repository.ErrDuplicateKey
	}

	var envelope api.Response[json.RawMessage]
	var messages []string
	if json.Unmarshal(body, &envelope) == nil {
		messages = envelope.ErrorMessages
	}
	return &RequestError{StatusCode: status, Messages: messages}
}

// envelopeError reports a rejection delivered inside a 2xx envelope.
func envelopeError(messages []string) error {
	return &RequestError{StatusCode: http.StatusOK, Messages: messages}
}
