// Package openai provides the embedding client used to turn profile
// text and search queries into vectors for the semantic index.
package openai

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

const defaultBaseURL = "https://api.openai.com"

// Embedder calls the OpenAI embeddings endpoint.
type Embedder struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	retryCfg   retry.Config
	logger     *zap.Logger
}

// NewEmbedder creates an embedder for the given model.
func NewEmbedder(apiKey, model string, logger *zap.Logger) *Embedder {
	return &Embedder{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retryCfg: retry.DefaultConfig(),
		logger:   logger,
	}
}

// newTestEmbedder points the embedder at an httptest server with fast retries.
func newTestEmbedder(baseURL string, logger *zap.Logger) *Embedder {
	e := NewEmbedder("test-key", "test-model", logger)
	e.baseURL = baseURL
	e.retryCfg = retry.Config{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2.0,
		Jitter:      0,
	}
	return e
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Embed returns one vector per input text, in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embeddingResponse
	err := retry.Do(ctx, e.retryCfg, func(ctx context.Context) error {
		return e.embedOnce(ctx, texts, &resp)
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, apperrors.ExternalAPI("openai",
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, apperrors.ExternalAPI("openai",
				fmt.Errorf("embedding index %d out of range", d.Index))
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// EmbedOne is a convenience wrapper for single-text callers.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *Embedder) embedOnce(ctx context.Context, texts []string, out *embeddingResponse) error {
	payload, err := json.Marshal(embeddingRequest{
		Model: e.model,
		Input: texts,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/v1/embeddings", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return retry.Retryable(apperrors.ExternalAPI("openai", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return retry.Retryable(apperrors.RateLimited())
	case resp.StatusCode >= 500:
		e.logger.Warn("openai server error", zap.Int("status", resp.StatusCode))
		return retry.Retryable(apperrors.ExternalAPI("openai",
			fmt.Errorf("status %d", resp.StatusCode)))
	case resp.StatusCode >= 400:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apperrors.ExternalAPI("openai",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(data)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode embedding response: %w", err)
	}
	return nil
}
