package middleware

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidhq/copilot-api/internal/domain"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
	"github.com/corvidhq/copilot-api/internal/service"
)

type stubKeyVerifier struct {
	key *domain.APIKey
	err error

	presented string
}

func (s *stubKeyVerifier) VerifyAPIKey(_ context.Context, presented string) (*domain.APIKey, error) {
	s.presented = presented
	if s.err != nil {
		return nil, s.err
	}
	return s.key, nil
}

type stubTokenVerifier struct {
	claims *service.ServiceClaims
	err    error
}

func (s *stubTokenVerifier) VerifyToken(string) (*service.ServiceClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	keyID := uuid.New()
	verifier := &stubKeyVerifier{key: &domain.APIKey{ID: keyID, Name: "ci"}}

	app := fiber.New()
	app.Use(APIKeyAuth(verifier))
	app.Get("/", func(c *fiber.Ctx) error {
		id, ok := GetAPIKeyID(c)
		assert.True(t, ok)
		assert.Equal(t, keyID, id)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer pk_abc_secret")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "pk_abc_secret", verifier.presented)
}

func TestAPIKeyAuth_MissingHeader(t *testing.T) {
	app := fiber.New()
	app.Use(APIKeyAuth(&stubKeyVerifier{}))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, apperrors.CodeUnauthorized, body.Error.Code)
}

func TestAPIKeyAuth_RejectedKey(t *testing.T) {
	verifier := &stubKeyVerifier{err: apperrors.Unauthorized("invalid api key")}

	app := fiber.New()
	app.Use(APIKeyAuth(verifier))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer pk_abc_wrong")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTAuth_ValidToken(t *testing.T) {
	verifier := &stubTokenVerifier{claims: &service.ServiceClaims{Subject: "dashboard"}}

	app := fiber.New()
	app.Use(JWTAuth(verifier))
	app.Get("/", func(c *fiber.Ctx) error {
		subject, ok := GetSubject(c)
		assert.True(t, ok)
		assert.Equal(t, "dashboard", subject)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer some.jwt.token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	verifier := &stubTokenVerifier{err: apperrors.Unauthorized("invalid token")}

	app := fiber.New()
	app.Use(JWTAuth(verifier))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer bad")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
