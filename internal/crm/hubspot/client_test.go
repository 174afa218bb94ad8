package hubspot

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

func TestGetDeal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/objects/deals/123", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("properties"), "dealstage")
		assert.Equal(t, "companies", r.URL.Query().Get("associations"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "123",
			"properties": map[string]string{
				"dealname":  "Acme renewal",
				"dealstage": "negotiation",
				"amount":    "48000",
			},
			"associations": map[string]any{
				"companies": map[string]any{
					"results": []map[string]string{{"id": "900", "type": "deal_to_company"}},
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, zap.NewNop())

	deal, err := client.GetDeal(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "123", deal.ID)
	assert.Equal(t, "negotiation", deal.Properties[PropDealStage])
	assert.Equal(t, []string{"900"}, deal.CompanyIDs())
}

func TestGetDeal_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, zap.NewNop())

	_, err := client.GetDeal(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDo_RetriesOn429(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "1", "properties": map[string]string{}})
	}))
	defer server.Close()

	client := newTestClient(server.URL, zap.NewNop())

	deal, err := client.GetDeal(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", deal.ID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_ExhaustedRetriesReturnRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL, zap.NewNop())

	_, err := client.GetDeal(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, apperrors.IsRateLimited(err))
}

func TestDo_NoRetryOn400(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server.URL, zap.NewNop())

	err := client.UpdateDealProperties(context.Background(), "1", map[string]string{"copilot_score": "88"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSearchDealsByLabel_Pagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/objects/deals/search", r.URL.Path)

		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.FilterGroups, 1)
		assert.Equal(t, PropCopilotLabel, req.FilterGroups[0].Filters[0].PropertyName)
		assert.Equal(t, "ideal", req.FilterGroups[0].Filters[0].Value)

		if req.After == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"total":   2,
				"results": []map[string]any{{"id": "1", "properties": map[string]string{}}},
				"paging":  map[string]any{"next": map[string]string{"after": "cursor-1"}},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total":   2,
			"results": []map[string]any{{"id": "2", "properties": map[string]string{}}},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, zap.NewNop())
	ctx := context.Background()

	page1, err := client.SearchDealsByLabel(ctx, "ideal", 100, "")
	require.NoError(t, err)
	assert.Equal(t, "cursor-1", page1.NextAfter())

	page2, err := client.SearchDealsByLabel(ctx, "ideal", 100, page1.NextAfter())
	require.NoError(t, err)
	assert.Empty(t, page2.NextAfter())
	assert.Equal(t, "2", page2.Results[0].ID)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, int64(0), parseRetryAfter("").Nanoseconds())
	assert.Equal(t, int64(0), parseRetryAfter("soon").Nanoseconds())
	assert.Equal(t, int64(2e9), parseRetryAfter("2").Nanoseconds())
}
