package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/domain"
	"github.com/corvidhq/copilot-api/internal/dto"
	"github.com/corvidhq/copilot-api/internal/service"
)

// MatchingHandler handles semantic match endpoints
type MatchingHandler struct {
	matchService *service.MatchService
	logger       *zap.Logger
}

// NewMatchingHandler creates a new matching handler
func NewMatchingHandler(matchService *service.MatchService, logger *zap.Logger) *MatchingHandler {
	return &MatchingHandler{
		matchService: matchService,
		logger:       logger,
	}
}

// SemanticMatch handles POST /api/v1/match/semantic
func (h *MatchingHandler) SemanticMatch(c *fiber.Ctx) error {
	var req dto.SemanticMatchRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	entityTypes := make([]domain.MatchEntityType, 0, len(req.EntityTypes))
	for _, t := range req.EntityTypes {
		entityTypes = append(entityTypes, domain.MatchEntityType(t))
	}

	result, err := h.matchService.Search(c.Context(), req.Query, entityTypes, req.Limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusOK, result)
}

// ExplainMatch handles POST /api/v1/match/explain
func (h *MatchingHandler) ExplainMatch(c *fiber.Ctx) error {
	var req dto.ExplainMatchRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	// uuid4 validation already ran; Parse cannot fail here.
	candidateID, _ := uuid.Parse(req.CandidateID)
	roleID, _ := uuid.Parse(req.RoleID)

	insight, err := h.matchService.Explain(c.Context(), candidateID, roleID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusOK, insight)
}

// RegisterRoutes registers match routes on the authenticated group
func (h *MatchingHandler) RegisterRoutes(api fiber.Router) {
	api.Post("/match/semantic", h.SemanticMatch)
	api.Post("/match/explain", h.ExplainMatch)
}
