package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/domain"
	"github.com/corvidhq/copilot-api/internal/dto"
	"github.com/corvidhq/copilot-api/internal/service"
	"github.com/corvidhq/copilot-api/internal/worker"
)

// CandidatesHandler handles candidate profile endpoints
type CandidatesHandler struct {
	candidateService *service.CandidateService
	queue            *asynq.Client
	logger           *zap.Logger
}

// NewCandidatesHandler creates a new candidates handler
func NewCandidatesHandler(
	candidateService *service.CandidateService,
	queue *asynq.Client,
	logger *zap.Logger,
) *CandidatesHandler {
	return &CandidatesHandler{
		candidateService: candidateService,
		queue:            queue,
		logger:           logger,
	}
}

// CreateCandidate handles POST /api/v1/candidates
func (h *CandidatesHandler) CreateCandidate(c *fiber.Ctx) error {
	var req dto.CreateCandidateRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	input := &domain.CandidateInput{
		Name:         req.Name,
		Email:        req.Email,
		Headline:     req.Headline,
		Summary:      req.Summary,
		Capabilities: req.Capabilities,
		Skills:       req.Skills,
		YearsExp:     req.YearsExp,
	}

	candidate, err := h.candidateService.Create(c.Context(), input)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.enqueueEmbedding(candidate.ID, false)

	return respondData(c, fiber.StatusCreated, candidate)
}

// GetCandidate handles GET /api/v1/candidates/:candidateId
func (h *CandidatesHandler) GetCandidate(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "candidateId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	candidate, err := h.candidateService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusOK, candidate)
}

// UpdateCandidate handles PATCH /api/v1/candidates/:candidateId
func (h *CandidatesHandler) UpdateCandidate(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "candidateId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.UpdateCandidateRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	current, err := h.candidateService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	input := &domain.CandidateInput{
		Name:         current.Name,
		Email:        current.Email,
		Headline:     current.Headline,
		Summary:      current.Summary,
		Capabilities: current.Capabilities,
		Skills:       current.Skills,
		YearsExp:     current.YearsExp,
	}
	if req.Headline != nil {
		input.Headline = *req.Headline
	}
	if req.Summary != nil {
		input.Summary = *req.Summary
	}
	if req.Capabilities != nil {
		input.Capabilities = req.Capabilities
	}
	if req.Skills != nil {
		input.Skills = req.Skills
	}
	if req.YearsExp != nil {
		input.YearsExp = *req.YearsExp
	}

	candidate, err := h.candidateService.Update(c.Context(), id, input)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.enqueueEmbedding(candidate.ID, false)

	return respondData(c, fiber.StatusOK, candidate)
}

// DeleteCandidate handles DELETE /api/v1/candidates/:candidateId
func (h *CandidatesHandler) DeleteCandidate(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "candidateId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.candidateService.Delete(c.Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}

	h.enqueueEmbedding(id, true)

	return c.SendStatus(fiber.StatusNoContent)
}

// ListCandidates handles GET /api/v1/candidates
func (h *CandidatesHandler) ListCandidates(c *fiber.Ctx) error {
	p := ParsePagination(c, 100)

	list, err := h.candidateService.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusOK, list)
}

// enqueueEmbedding schedules a vector index refresh. Failures are logged;
// the profile write has already succeeded.
func (h *CandidatesHandler) enqueueEmbedding(id uuid.UUID, deleted bool) {
	if h.queue == nil {
		return
	}
	payload := &worker.EmbeddingPayload{EntityID: id, Deleted: deleted}
	if err := worker.EnqueueCandidateEmbedding(h.queue, payload); err != nil {
		h.logger.Warn("failed to enqueue candidate embedding",
			zap.String("candidate_id", id.String()),
			zap.Error(err),
		)
	}
}

// RegisterRoutes registers candidate routes on the authenticated group
func (h *CandidatesHandler) RegisterRoutes(api fiber.Router) {
	api.Post("/candidates", h.CreateCandidate)
	api.Get("/candidates", h.ListCandidates)
	api.Get("/candidates/:candidateId", h.GetCandidate)
	api.Patch("/candidates/:candidateId", h.UpdateCandidate)
	api.Delete("/candidates/:candidateId", h.DeleteCandidate)
}
