package pinecone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
)

func TestQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Api-Key"))

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "candidates", req.Namespace)
		assert.Equal(t, 10, req.TopK)
		assert.True(t, req.IncludeMetadata)

		_ = json.NewEncoder(w).Encode(queryResponse{
			Namespace: "candidates",
			Matches: []QueryMatch{
				{ID: "c-1", Score: 0.93, Metadata: map[string]string{"name": "Ada"}},
				{ID: "c-2", Score: 0.81},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, zap.NewNop())

	matches, err := client.Query(context.Background(), "candidates", []float32{0.1, 0.2}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "c-1", matches[0].ID)
	assert.InDelta(t, 0.93, matches[0].Score, 1e-9)
	assert.Equal(t, "Ada", matches[0].Metadata["name"])
}

func TestUpsert_EmptyIsNoop(t *testing.T) {
	client := newTestClient("http://unreachable.invalid", zap.NewNop())
	assert.NoError(t, client.Upsert(context.Background(), "roles", nil))
}

func TestDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vectors/delete", r.URL.Path)

		var req deleteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"r-1"}, req.IDs)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL, zap.NewNop())
	assert.NoError(t, client.Delete(context.Background(), "roles", []string{"r-1"}))
}

func TestPost_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(queryResponse{})
	}))
	defer server.Close()

	client := newTestClient(server.URL, zap.NewNop())

	_, err := client.Query(context.Background(), "deals", []float32{0.5}, 5)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPost_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server.URL, zap.NewNop())

	_, err := client.Query(context.Background(), "deals", []float32{0.5}, 5)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeExternalAPI, appErr.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
