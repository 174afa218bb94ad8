package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/dto"
	"github.com/corvidhq/copilot-api/internal/service"
	"github.com/corvidhq/copilot-api/internal/worker"
)

// TrainingHandler handles training run endpoints
type TrainingHandler struct {
	trainingService *service.TrainingService
	queue           *asynq.Client
	logger          *zap.Logger
}

// NewTrainingHandler creates a new training handler
func NewTrainingHandler(
	trainingService *service.TrainingService,
	queue *asynq.Client,
	logger *zap.Logger,
) *TrainingHandler {
	return &TrainingHandler{
		trainingService: trainingService,
		queue:           queue,
		logger:          logger,
	}
}

// StartTrainingRun handles POST /api/v1/training/runs
func (h *TrainingHandler) StartTrainingRun(c *fiber.Ctx) error {
	// The body is optional; snapshots default on.
	var req dto.StartTrainingRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return respondError(c, h.logger, err)
		}
	}
	snapshot := req.SnapshotEnabled == nil || *req.SnapshotEnabled

	run, err := h.trainingService.StartRun(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	payload := &worker.TrainingRunPayload{RunID: run.ID, SnapshotEnabled: snapshot}
	if err := worker.EnqueueTrainingRun(h.queue, payload); err != nil {
		h.logger.Error("failed to enqueue training run",
			zap.String("run_id", run.ID.String()),
			zap.Error(err),
		)
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusAccepted, run)
}

// GetTrainingRun handles GET /api/v1/training/runs/:runId
func (h *TrainingHandler) GetTrainingRun(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "runId")
	if err != nil {
		return respondError(c, h.logger, err)
	}

	run, err := h.trainingService.GetRun(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusOK, run)
}

// ListTrainingRuns handles GET /api/v1/training/runs
func (h *TrainingHandler) ListTrainingRuns(c *fiber.Ctx) error {
	p := ParsePagination(c, 100)

	runs, err := h.trainingService.ListRuns(c.Context(), p.Limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return respondData(c, fiber.StatusOK, runs)
}

// RegisterRoutes registers training routes on the authenticated group
func (h *TrainingHandler) RegisterRoutes(api fiber.Router) {
	api.Post("/training/runs", h.StartTrainingRun)
	api.Get("/training/runs", h.ListTrainingRuns)
	api.Get("/training/runs/:runId", h.GetTrainingRun)
}
