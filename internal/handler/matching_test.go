package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/domain"
	"github.com/corvidhq/copilot-api/internal/service"
	"github.com/corvidhq/copilot-api/internal/vector/pinecone"
)

func newMatchingTestApp(index *stubVectorIndex) *fiber.App {
	logger := zap.NewNop()
	matchService := service.NewMatchService(
		&stubQueryEmbedder{values: []float32{0.1, 0.2}},
		index,
		newStubCandidateRepo(),
		newStubRoleRepo(),
		nil,
		10,
		logger,
	)
	handler := NewMatchingHandler(matchService, logger)

	app := fiber.New()
	api := app.Group("/api/v1")
	handler.RegisterRoutes(api)
	return app
}

func TestMatchingHandler_SemanticMatch(t *testing.T) {
	index := &stubVectorIndex{matches: map[string][]pinecone.QueryMatch{
		"candidates": {
			{ID: "cand-1", Score: 0.91},
			{ID: "cand-2", Score: 0.42},
		},
		"roles": {
			{ID: "role-1", Score: 0.77},
		},
	}}
	app := newMatchingTestApp(index)

	body, _ := json.Marshal(map[string]any{
		"query":       "golang platform engineer",
		"entityTypes": []string{"candidates", "roles"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match/semantic", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	success, data, _ := decodeEnvelope(t, resp)
	assert.True(t, success)

	var result domain.MatchResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.Len(t, result.Matches, 3)
	// Merged across namespaces and sorted by similarity.
	assert.Equal(t, "cand-1", result.Matches[0].EntityID)
	assert.Equal(t, "role-1", result.Matches[1].EntityID)
	assert.Equal(t, "cand-2", result.Matches[2].EntityID)
}

func TestMatchingHandler_SemanticMatch_QueryTooShort(t *testing.T) {
	app := newMatchingTestApp(&stubVectorIndex{})

	body, _ := json.Marshal(map[string]any{"query": "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match/semantic", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	success, _, errBody := decodeEnvelope(t, resp)
	assert.False(t, success)
	assert.Equal(t, "INVALID_INPUT", errBody.Code)
}

func TestMatchingHandler_SemanticMatch_UnknownEntityType(t *testing.T) {
	app := newMatchingTestApp(&stubVectorIndex{})

	body, _ := json.Marshal(map[string]any{
		"query":       "golang platform engineer",
		"entityTypes": []string{"companies"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match/semantic", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
