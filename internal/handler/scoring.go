package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/domain"
	"github.com/corvidhq/copilot-api/internal/dto"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
	"github.com/corvidhq/copilot-api/internal/service"
)

// ScoringHandler handles deal scoring and score analytics endpoints
type ScoringHandler struct {
	dealScoreService *service.DealScoreService
	statsService     *service.StatsService
	logger           *zap.Logger
}

// NewScoringHandler creates a new scoring handler
func NewScoringHandler(
	dealScoreService *service.DealScoreService,
	statsService *service.StatsService,
	logger *zap.Logger,
) *ScoringHandler {
	return &ScoringHandler{
		dealScoreService: dealScoreService,
		statsService:     statsService,
		logger:           logger,
	}
}

// ScoreDeal handles POST /api/v1/deals/:dealId/score
func (h *ScoringHandler) ScoreDeal(c *fiber.Ctx) error {
	dealID := c.Params("dealId")
	if dealID == "" {
		return respondError(c, h.logger, apperrors.InvalidInput("dealId is required"))
	}

	score, err := h.dealScoreService.ScoreDeal(c.Context(), dealID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusOK, score)
}

// GetDealScore handles GET /api/v1/deals/:dealId/score
func (h *ScoringHandler) GetDealScore(c *fiber.Ctx) error {
	dealID := c.Params("dealId")
	if dealID == "" {
		return respondError(c, h.logger, apperrors.InvalidInput("dealId is required"))
	}

	score, err := h.dealScoreService.GetScore(c.Context(), dealID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusOK, score)
}

// ClassifyDeal handles POST /api/v1/deals/:dealId/classification
func (h *ScoringHandler) ClassifyDeal(c *fiber.Ctx) error {
	dealID := c.Params("dealId")
	if dealID == "" {
		return respondError(c, h.logger, apperrors.InvalidInput("dealId is required"))
	}

	var req dto.ClassifyDealRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	classification, err := h.dealScoreService.Classify(c.Context(), dealID, domain.DealLabel(req.Label))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusCreated, classification)
}

// GetScoreStats handles GET /api/v1/scores/stats
func (h *ScoringHandler) GetScoreStats(c *fiber.Ctx) error {
	kind := domain.ScoreEventKind(c.Query("kind", string(domain.ScoreEventDeal)))

	var window time.Duration
	if raw := c.Query("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return respondError(c, h.logger, apperrors.InvalidInput("window must be a positive duration"))
		}
		window = parsed
	}

	stats, err := h.statsService.ScoreStats(c.Context(), kind, window)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusOK, stats)
}

// RegisterRoutes registers deal scoring routes on the authenticated group
func (h *ScoringHandler) RegisterRoutes(api fiber.Router) {
	api.Post("/deals/:dealId/score", h.ScoreDeal)
	api.Get("/deals/:dealId/score", h.GetDealScore)
	api.Post("/deals/:dealId/classification", h.ClassifyDeal)
}

// RegisterStatsRoutes registers analytics routes on the internal group
func (h *ScoringHandler) RegisterStatsRoutes(internal fiber.Router) {
	internal.Get("/scores/stats", h.GetScoreStats)
}
