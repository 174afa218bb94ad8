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

// RolesHandler handles role endpoints, including candidate fit scoring
type RolesHandler struct {
	roleService *service.RoleService
	fitService  *service.FitService
	queue       *asynq.Client
	logger      *zap.Logger
}

// NewRolesHandler creates a new roles handler
func NewRolesHandler(
	roleService *service.RoleService,
	fitService *service.FitService,
	queue *asynq.Client,
	logger *zap.Logger,
) *RolesHandler {
	return &RolesHandler{
		roleService: roleService,
		fitService:  fitService,
		queue:       queue,
		logger:      logger,
	}
}

// CreateRole handles POST /api/v1/roles
func (h *RolesHandler) CreateRole(c *fiber.Ctx) error {
	var req dto.CreateRoleRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	input := &domain.RoleInput{
		Title:        req.Title,
		Description:  req.Description,
		Capabilities: req.Capabilities,
		Skills:       req.Skills,
		MinYearsExp:  req.MinYearsExp,
	}

	role, err := h.roleService.Create(c.Context(), input)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.enqueueEmbedding(role.ID, false)

	return respondData(c, fiber.StatusCreated, role)
}

// GetRole handles GET /api/v1/roles/:roleId
func (h *RolesHandler) GetRole(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "roleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	role, err := h.roleService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusOK, role)
}

// UpdateRole handles PATCH /api/v1/roles/:roleId
func (h *RolesHandler) UpdateRole(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "roleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.UpdateRoleRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	current, err := h.roleService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	input := &domain.RoleInput{
		Title:        current.Title,
		Description:  current.Description,
		Capabilities: current.Capabilities,
		Skills:       current.Skills,
		MinYearsExp:  current.MinYearsExp,
	}
	if req.Title != nil {
		input.Title = *req.Title
	}
	if req.Description != nil {
		input.Description = *req.Description
	}
	if req.Capabilities != nil {
		input.Capabilities = req.Capabilities
	}
	if req.Skills != nil {
		input.Skills = req.Skills
	}
	if req.MinYearsExp != nil {
		input.MinYearsExp = *req.MinYearsExp
	}

	role, err := h.roleService.Update(c.Context(), id, input)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.enqueueEmbedding(role.ID, false)

	return respondData(c, fiber.StatusOK, role)
}

// SetRoleStatus handles PUT /api/v1/roles/:roleId/status
func (h *RolesHandler) SetRoleStatus(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "roleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req dto.SetRoleStatusRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}

	role, err := h.roleService.SetStatus(c.Context(), id, domain.RoleStatus(req.Status))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	h.enqueueEmbedding(role.ID, false)

	return respondData(c, fiber.StatusOK, role)
}

// DeleteRole handles DELETE /api/v1/roles/:roleId
func (h *RolesHandler) DeleteRole(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "roleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.roleService.Delete(c.Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}

	h.enqueueEmbedding(id, true)

	return c.SendStatus(fiber.StatusNoContent)
}

// ListRoles handles GET /api/v1/roles
func (h *RolesHandler) ListRoles(c *fiber.Ctx) error {
	p := ParsePagination(c, 100)
	status := domain.RoleStatus(c.Query("status"))

	list, err := h.roleService.List(c.Context(), status, p.Limit, p.Offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusOK, list)
}

// GetCandidateFit handles GET /api/v1/roles/:roleId/candidates/:candidateId/fit
func (h *RolesHandler) GetCandidateFit(c *fiber.Ctx) error {
	roleID, err := parseUUIDParam(c, "roleId")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	candidateID, err := parseUUIDParam(c, "candidateId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	fit, err := h.fitService.ComputeFit(c.Context(), roleID, candidateID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusOK, fit)
}

func (h *RolesHandler) enqueueEmbedding(id uuid.UUID, deleted bool) {
	if h.queue == nil {
		return
	}
	payload := &worker.EmbeddingPayload{EntityID: id, Deleted: deleted}
	if err := worker.EnqueueRoleEmbedding(h.queue, payload); err != nil {
		h.logger.Warn("failed to enqueue role embedding",
			zap.String("role_id", id.String()),
			zap.Error(err),
		)
	}
}

// RegisterRoutes registers role routes on the authenticated group
func (h *RolesHandler) RegisterRoutes(api fiber.Router) {
	api.Post("/roles", h.CreateRole)
	api.Get("/roles", h.ListRoles)
	api.Get("/roles/:roleId", h.GetRole)
	api.Patch("/roles/:roleId", h.UpdateRole)
	api.Put("/roles/:roleId/status", h.SetRoleStatus)
	api.Delete("/roles/:roleId", h.DeleteRole)
	api.Get("/roles/:roleId/candidates/:candidateId/fit", h.GetCandidateFit)
}
