// Package pinecone implements a minimal REST client for the Pinecone
// vector index data plane: upserting embeddings and similarity queries
// against per-entity namespaces.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
	"github.com/corvidhq/copilot-api/internal/pkg/retry"
)

// Client talks to a single Pinecone index over its data-plane host.
type Client struct {
	indexHost  string
	apiKey     string
	httpClient *http.Client
	retryCfg   retry.Config
	logger     *zap.Logger
}

// NewClient creates a Pinecone client for the given index host.
func NewClient(indexHost, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		indexHost: indexHost,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		retryCfg: retry.DefaultConfig(),
		logger:   logger,
	}
}

// newTestClient returns a client with fast retries for httptest servers.
func newTestClient(indexHost string, logger *zap.Logger) *Client {
	c := NewClient(indexHost, "test-key", logger)
	c.retryCfg = retry.Config{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2.0,
		Jitter:      0,
	}
	return c
}

// Vector is a single embedding stored in the index.
type Vector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// QueryMatch is one scored result from a similarity query.
type QueryMatch struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Namespace string   `json:"namespace"`
	Vectors   []Vector `json:"vectors"`
}

type queryRequest struct {
	Namespace       string    `json:"namespace"`
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches   []QueryMatch `json:"matches"`
	Namespace string       `json:"namespace"`
}

type deleteRequest struct {
	Namespace string   `json:"namespace"`
	IDs       []string `json:"ids"`
}

// Upsert writes vectors into the given namespace, replacing any
// existing vectors with the same IDs.
func (c *Client) Upsert(ctx context.Context, namespace string, vectors []Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	return c.post(ctx, "/vectors/upsert", upsertRequest{
		Namespace: namespace,
		Vectors:   vectors,
	}, nil)
}

// Query returns the topK nearest vectors to the given embedding within
// a namespace, ordered by descending similarity.
func (c *Client) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]QueryMatch, error) {
	var resp queryResponse
	err := c.post(ctx, "/query", queryRequest{
		Namespace:       namespace,
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

// Delete removes vectors by ID from a namespace. Missing IDs are not
// an error.
func (c *Client) Delete(ctx context.Context, namespace string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.post(ctx, "/vectors/delete", deleteRequest{
		Namespace: namespace,
		IDs:       ids,
	}, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		return c.postOnce(ctx, path, body, out)
	})
}

func (c *Client) postOnce(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal pinecone request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.indexHost+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create pinecone request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.Retryable(apperrors.ExternalAPI("pinecone", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return retry.Retryable(apperrors.RateLimited())
	case resp.StatusCode >= 500:
		c.logger.Warn("pinecone server error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return retry.Retryable(apperrors.ExternalAPI("pinecone",
			fmt.Errorf("status %d", resp.StatusCode)))
	case resp.StatusCode >= 400:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apperrors.ExternalAPI("pinecone",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode pinecone response: %w", err)
	}
	return nil
}
