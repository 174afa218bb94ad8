package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/domain"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
	"github.com/corvidhq/copilot-api/internal/service"
)

// stubModelRepo serves training runs keyed by ID.
type stubModelRepo struct {
	runs map[uuid.UUID]*domain.TrainingRun
}

func newStubModelRepo(runs ...*domain.TrainingRun) *stubModelRepo {
	repo := &stubModelRepo{runs: make(map[uuid.UUID]*domain.TrainingRun)}
	for _, r := range runs {
		repo.runs[r.ID] = r
	}
	return repo
}

func (r *stubModelRepo) CreateModel(context.Context, *domain.ScoringModel) error { return nil }
func (r *stubModelRepo) GetActiveModel(context.Context) (*domain.ScoringModel, error) {
	return nil, apperrors.NotFound("scoring model")
}
func (r *stubModelRepo) GetModelByVersion(context.Context, int) (*domain.ScoringModel, error) {
	return nil, apperrors.NotFound("scoring model")
}
func (r *stubModelRepo) NextVersion(context.Context) (int, error) { return 1, nil }

func (r *stubModelRepo) CreateRun(_ context.Context, run *domain.TrainingRun) error {
	r.runs[run.ID] = run
	return nil
}

func (r *stubModelRepo) UpdateRun(_ context.Context, run *domain.TrainingRun) error {
	r.runs[run.ID] = run
	return nil
}

func (r *stubModelRepo) GetRunByID(_ context.Context, id uuid.UUID) (*domain.TrainingRun, error) {
	run, ok := r.runs[id]
	if !ok {
		return nil, apperrors.NotFound("training run")
	}
	return run, nil
}

func (r *stubModelRepo) ListRuns(context.Context, int) ([]domain.TrainingRun, error) {
	runs := make([]domain.TrainingRun, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, *run)
	}
	return runs, nil
}

func newTrainingTestApp(repo *stubModelRepo) *fiber.App {
	logger := zap.NewNop()
	trainingService := service.NewTrainingService(nil, repo, nil, nil, nil, 100, logger)
	handler := NewTrainingHandler(trainingService, nil, logger)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Get("/training/runs", handler.ListTrainingRuns)
	api.Get("/training/runs/:runId", handler.GetTrainingRun)
	return app
}

func TestTrainingHandler_StartTrainingRun_InvalidBody(t *testing.T) {
	repo := newStubModelRepo()
	app := newTrainingTestApp(repo)
	app.Post("/api/v1/training/runs", NewTrainingHandler(
		service.NewTrainingService(nil, repo, nil, nil, nil, 100, zap.NewNop()), nil, zap.NewNop(),
	).StartTrainingRun)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/training/runs",
		strings.NewReader(`{"snapshotEnabled": "yes"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The malformed body is rejected before a run is recorded.
	assert.Empty(t, repo.runs)
}

func TestTrainingHandler_GetTrainingRun(t *testing.T) {
	started := time.Now().UTC()
	run := &domain.TrainingRun{
		ID:           uuid.New(),
		Status:       domain.TrainingRunCompleted,
		ModelVersion: 3,
		Processed:    42,
		StartedAt:    &started,
		CreatedAt:    started,
	}
	app := newTrainingTestApp(newStubModelRepo(run))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/training/runs/"+run.ID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	success, data, _ := decodeEnvelope(t, resp)
	assert.True(t, success)

	var decoded domain.TrainingRun
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, domain.TrainingRunCompleted, decoded.Status)
	assert.Equal(t, 3, decoded.ModelVersion)
	assert.Equal(t, 42, decoded.Processed)
}

func TestTrainingHandler_GetTrainingRun_NotFound(t *testing.T) {
	app := newTrainingTestApp(newStubModelRepo())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/training/runs/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTrainingHandler_GetTrainingRun_InvalidID(t *testing.T) {
	app := newTrainingTestApp(newStubModelRepo())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/training/runs/run-7", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	success, _, errBody := decodeEnvelope(t, resp)
	assert.False(t, success)
	assert.Equal(t, "INVALID_INPUT", errBody.Code)
}

func TestTrainingHandler_ListTrainingRuns(t *testing.T) {
	run := &domain.TrainingRun{ID: uuid.New(), Status: domain.TrainingRunPending, CreatedAt: time.Now().UTC()}
	app := newTrainingTestApp(newStubModelRepo(run))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/training/runs", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, data, _ := decodeEnvelope(t, resp)
	var runs []domain.TrainingRun
	require.NoError(t, json.Unmarshal(data, &runs))
	assert.Len(t, runs, 1)
}
