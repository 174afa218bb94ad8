package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	// Max requests per window
	Max int
	// Window duration
	Window time.Duration
	// Key generator function
	KeyGenerator func(*fiber.Ctx) string
}

// DefaultRateLimitConfig returns default rate limit config
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Max:    100,
		Window: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}
}

// RateLimitMiddleware limits requests using a Redis sliding window
type RateLimitMiddleware struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(redisClient *redis.Client, config ...RateLimitConfig) *RateLimitMiddleware {
	cfg := DefaultRateLimitConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return &RateLimitMiddleware{
		redis:  redisClient,
		config: cfg,
	}
}

// Handler returns the rate limit handler
func (m *RateLimitMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:%s", m.config.KeyGenerator(c))
		return m.limit(c, key, m.config.Max, m.config.Window)
	}
}

// APIKeyRateLimit limits requests per API key. Falls back to the
// global handler key when no key identity is present.
func (m *RateLimitMiddleware) APIKeyRateLimit(maxPerMinute int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		keyID, ok := GetAPIKeyID(c)
		if !ok {
			return c.Next()
		}

		key := fmt.Sprintf("ratelimit:apikey:%s", keyID.String())
		return m.limit(c, key, maxPerMinute, time.Minute)
	}
}

func (m *RateLimitMiddleware) limit(c *fiber.Ctx, key string, max int, window time.Duration) error {
	now := time.Now().Unix()
	windowStart := now - int64(window.Seconds())

	ctx := context.Background()

	m.redis.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart, 10))

	count, err := m.redis.ZCard(ctx, key).Result()
	if err != nil {
		// If Redis is down we let requests through rather than fail closed.
		return c.Next()
	}

	if count >= int64(max) {
		c.Set("X-RateLimit-Limit", strconv.Itoa(max))
		c.Set("X-RateLimit-Remaining", "0")
		c.Set("X-RateLimit-Reset", strconv.FormatInt(now+int64(window.Seconds()), 10))
		c.Set("Retry-After", strconv.FormatInt(int64(window.Seconds()), 10))

		appErr := apperrors.RateLimited()
		return c.Status(appErr.StatusCode).JSON(fiber.Map{
			"success": false,
			"error": fiber.Map{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}

	// The member must be unique per request or same-second requests
	// collapse into one ZSET entry and the window undercounts. Request
	// IDs won't do: callers can supply their own via X-Request-ID.
	m.redis.ZAdd(ctx, key, redis.Z{
		Score:  float64(now),
		Member: fmt.Sprintf("%d:%s", now, uuid.NewString()),
	})
	m.redis.Expire(ctx, key, window*2)

	remaining := max - int(count) - 1
	c.Set("X-RateLimit-Limit", strconv.Itoa(max))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(now+int64(window.Seconds()), 10))

	return c.Next()
}
