package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/dto"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
	"github.com/corvidhq/copilot-api/internal/service"
)

// APIKeysHandler handles API key management endpoints
type APIKeysHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

// NewAPIKeysHandler creates a new API keys handler
func NewAPIKeysHandler(authService *service.AuthService, logger *zap.Logger) *APIKeysHandler {
	return &APIKeysHandler{
		authService: authService,
		logger:      logger,
	}
}

// CreateAPIKey handles POST /internal/v1/keys. The full key is only
// returned in this response.
func (h *APIKeysHandler) CreateAPIKey(c *fiber.Ctx) error {
	var req dto.CreateAPIKeyRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	key, fullKey, err := h.authService.CreateAPIKey(c.Context(), req.Name)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{
		"apiKey": key,
		"key":    fullKey,
	})
}

// RevokeAPIKey handles DELETE /internal/v1/keys/:prefix
func (h *APIKeysHandler) RevokeAPIKey(c *fiber.Ctx) error {
	prefix := c.Params("prefix")
	if prefix == "" {
		return respondError(c, h.logger, apperrors.InvalidInput("prefix is required"))
	}

	if err := h.authService.RevokeAPIKey(c.Context(), prefix); err != nil {
		return respondError(c, h.logger, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RegisterRoutes registers key management routes on the internal group
func (h *APIKeysHandler) RegisterRoutes(internal fiber.Router) {
	internal.Post("/keys", h.CreateAPIKey)
	internal.Delete("/keys/:prefix", h.RevokeAPIKey)
}
