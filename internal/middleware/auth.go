package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/corvidhq/copilot-api/internal/domain"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
	"github.com/corvidhq/copilot-api/internal/service"
)

// Locals keys set by the auth middlewares.
const (
	ContextKeyAPIKeyID   = "apiKeyID"
	ContextKeyAPIKeyName = "apiKeyName"
	ContextKeySubject    = "subject"
)

// APIKeyVerifier verifies presented API keys
type APIKeyVerifier interface {
	VerifyAPIKey(ctx context.Context, presented string) (*domain.APIKey, error)
}

// TokenVerifier verifies internal JWTs
type TokenVerifier interface {
	VerifyToken(tokenString string) (*service.ServiceClaims, error)
}

// APIKeyAuth authenticates requests with a pk_ bearer key
func APIKeyAuth(verifier APIKeyVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "missing api key")
		}

		key, err := verifier.VerifyAPIKey(c.UserContext(), token)
		if err != nil {
			if appErr := apperrors.GetAppError(err); appErr != nil {
				return unauthorized(c, appErr.Message)
			}
			return unauthorized(c, "invalid api key")
		}

		c.Locals(ContextKeyAPIKeyID, key.ID)
		c.Locals(ContextKeyAPIKeyName, key.Name)
		return c.Next()
	}
}

// JWTAuth authenticates requests on the internal group with a signed token
func JWTAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "missing token")
		}

		claims, err := verifier.VerifyToken(token)
		if err != nil {
			return unauthorized(c, "invalid token")
		}

		c.Locals(ContextKeySubject, claims.Subject)
		return c.Next()
	}
}

// GetAPIKeyID returns the authenticated API key ID, if any
func GetAPIKeyID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(ContextKeyAPIKeyID).(uuid.UUID)
	return id, ok
}

// GetSubject returns the authenticated JWT subject, if any
func GetSubject(c *fiber.Ctx) (string, bool) {
	subject, ok := c.Locals(ContextKeySubject).(string)
	return subject, ok && subject != ""
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(c *fiber.Ctx, message string) error {
	appErr := apperrors.Unauthorized(message)
	return c.Status(appErr.StatusCode).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
