// Package hubspot is a typed client for the HubSpot CRM v3 REST API with
// OAuth2 token refresh, client-side rate limiting, circuit breaking and
// jittered backoff on 429 responses.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/corvidhq/copilot-api/internal/config"
	"github.com/corvidhq/copilot-api/internal/pkg/circuitbreaker"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
	"github.com/corvidhq/copilot-api/internal/pkg/retry"
)

// Client calls the HubSpot CRM API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
	logger     *zap.Logger
}

// NewClient creates a HubSpot client. The refresh token is exchanged and
// re-exchanged transparently by the oauth2 token source.
func NewClient(cfg config.HubSpotConfig, logger *zap.Logger) *Client {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.BaseURL + "/oauth/v1/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	source := oauthCfg.TokenSource(context.Background(), &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	})

	httpClient := oauth2.NewClient(context.Background(), source)
	httpClient.Timeout = 30 * time.Second

	limit := rate.Limit(cfg.RateLimit)
	if limit <= 0 {
		limit = rate.Limit(8)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 10
	}

	breakerCfg := circuitbreaker.DefaultConfig("hubspot")
	breakerCfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		logger.Warn("circuit breaker state changed",
			zap.String("name", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    circuitbreaker.New(breakerCfg),
		retryCfg:   retry.DefaultConfig(),
		logger:     logger,
	}
}

// newTestClient builds a client without OAuth for httptest servers.
func newTestClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		breaker:    circuitbreaker.New(circuitbreaker.DefaultConfig("hubspot-test")),
		retryCfg: retry.Config{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			MaxDelay:    5 * time.Millisecond,
			Multiplier:  2,
		},
		logger: logger,
	}
}

// do executes one API call with rate limiting, retry and circuit breaking,
// decoding the JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.breaker.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
			return c.doOnce(ctx, method, path, query, body, out)
		})
	})
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.Retryable(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.Warn("hubspot rate limited",
			zap.String("path", path),
			zap.String("retry_after", resp.Header.Get("Retry-After")),
		)
		return retry.RetryableAfter(
			apperrors.RateLimited().WithError(fmt.Errorf("hubspot: %s", string(respBody))),
			parseRetryAfter(resp.Header.Get("Retry-After")),
		)

	case resp.StatusCode >= 500:
		return retry.Retryable(fmt.Errorf("hubspot server error: %s", resp.Status))

	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound("hubspot record")

	case resp.StatusCode >= 400:
		return apperrors.ExternalAPI("hubspot", fmt.Errorf("%s: %s", resp.Status, string(respBody)))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// parseRetryAfter reads a Retry-After header in seconds; zero means the
// backoff schedule decides.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
