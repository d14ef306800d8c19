package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlfranklin/BlobRepositoryDemo/api"
	"github.com/carlfranklin/BlobRepositoryDemo/query"
	"github.com/carlfranklin/BlobRepositoryDemo/repository"
)

type member struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	Age       int    `json:"age"`
}

func newMemberClient(t *testing.T, baseURL string) *Client[string, member] {
	t.Helper()
	client, err := New[string, member](baseURL, "members")
	require.NoError(t, err)
	return client
}

func TestNewValidation(t *testing.T) {
	_, err := New[string, member]("", "members")
	assert.Error(t, err)

	_, err = New[string, member]("http://localhost", "")
	assert.Error(t, err)
}

func TestGetAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/members", r.URL.Path)

		_ = json.NewEncoder(w).Encode(api.OKList([]member{
			{ID: "1", FirstName: "Carl", Age: 55},
			{ID: "2", FirstName: "Ada", Age: 36},
		}))
	}))
	defer server.Close()

	client := newMemberClient(t, server.URL)
	members, err := client.GetAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, members, 2)
	assert.Equal(t, "Carl", members[0].FirstName)
	assert.Equal(t, "Ada", members[1].FirstName)
}

func TestGetByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/members/2", r.URL.Path)

		_ = json.NewEncoder(w).Encode(api.OK(member{ID: "2", FirstName: "Ada", Age: 36}))
	}))
	defer server.Close()

	client := newMemberClient(t, server.URL)
	got, err := client.GetByID(context.Background(), "2")

	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)
}

func TestGetByIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(api.Fail[member]("record not found"))
	}))
	defer server.Close()

	client := newMemberClient(t, server.URL)
	_, err := client.GetByID(context.Background(), "99")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInsert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/members", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got member
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Carl", got.FirstName)

		_ = json.NewEncoder(w).Encode(api.OK(got))
	}))
	defer server.Close()

	client := newMemberClient(t, server.URL)
	inserted, err := client.Insert(context.Background(), member{ID: "1", FirstName: "Carl", Age: 55})

	require.NoError(t, err)
	assert.Equal(t, "1", inserted.ID)
}

func TestInsertConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(api.Fail[member]("duplicate record key"))
	}))
	defer server.Close()

	client := newMemberClient(t, server.URL)
	_, err := client.Insert(context.Background(), member{ID: "1"})

	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestInsertNilRecordSkipsRequest(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client, err := New[string, *member](server.URL, "members")
	require.NoError(t, err)

	_, err = client.Insert(context.Background(), nil)
	assert.ErrorIs(t, err, repository.ErrNilRecord)
	assert.Zero(t, requests)
}

func TestUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/members", r.URL.Path)

		var got member
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(api.OK(got))
	}))
	defer server.Close()

	client := newMemberClient(t, server.URL)
	updated, err := client.Update(context.Background(), member{ID: "1", FirstName: "Carl", Age: 56})

	require.NoError(t, err)
	assert.Equal(t, 56, updated.Age)
}

func TestDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/members/delete", r.URL.Path)

		_ = json.NewEncoder(w).Encode(api.OK(true))
	}))
	defer server.Close()

	client := newMemberClient(t, server.URL)
	removed, err := client.Delete(context.Background(), member{ID: "1", FirstName: "Carl"})

	require.NoError(t, err)
	assert.True(t, removed)
}

func TestDeleteByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/members/1", r.URL.Path)

		_ = json.NewEncoder(w).Encode(api.OK(true))
	}))
	defer server.Close()

	client := newMemberClient(t, server.URL)
	removed, err := client.DeleteByID(context.Background(), "1")

	require.NoError(t, err)
	assert.True(t, removed)
}

func TestDeleteAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/members", r.URL.Path)

		_ = json.NewEncoder(w).Encode(api.OK(true))
	}))
	defer server.Close()

	client := newMemberClient(t, server.URL)
	require.NoError(t, client.DeleteAll(context.Background()))
}

func TestGetSendsStructuredQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/members/query", r.URL.Path)

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Filters, 1)
		assert.Equal(t, "age", req.Filters[0].Field)
		assert.Equal(t, query.OpGte, req.Filters[0].Op)
		assert.Equal(t, float64(40), req.Filters[0].Value)
		require.Len(t, req.OrderBy, 1)
		assert.True(t, req.OrderBy[0].Descending)
		require.NotNil(t, req.Limit)
		assert.Equal(t, 2, *req.Limit)

		_ = json.NewEncoder(w).Encode(api.OKList([]member{
			{ID: "3", FirstName: "Grace", Age: 85},
			{ID: "1", FirstName: "Carl", Age: 55},
		}))
	}))
	defer server.Close()

	limit := 2
	client := newMemberClient(t, server.URL)
	got, err := client.Get(context.Background(), query.Options[member]{
		Filters: []query.Filter{{Field: "age", Op: query.OpGte, Value: 40}},
		OrderBy: []query.OrderClause{{Field: "age", Descending: true}},
		Limit:   &limit,
	})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Grace", got[0].FirstName)
}

func TestGetRejectsFunctionOptions(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := newMemberClient(t, server.URL)
	_, err := client.Get(context.Background(), query.Options[member]{
		Where: func(m member) bool { return m.Age > 40 },
	})

	assert.ErrorIs(t, err, repository.ErrNotSupported)
	assert.Zero(t, requests)
}

func TestEnvelopeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.FailList[member]("backend unavailable", "try again later"))
	}))
	defer server.Close()

	client := newMemberClient(t, server.URL)
	_, err := client.GetAll(context.Background())

	require.Error(t, err)
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, []string{"backend unavailable", "try again later"}, reqErr.Messages)
}
