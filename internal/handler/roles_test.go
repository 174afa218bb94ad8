package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/domain"
	"github.com/corvidhq/copilot-api/internal/service"
)

func newRolesTestApp(candidateRepo *stubCandidateRepo, roleRepo *stubRoleRepo) *fiber.App {
	logger := zap.NewNop()
	roleService := service.NewRoleService(roleRepo)
	fitService := service.NewFitService(
		candidateRepo,
		roleRepo,
		&stubEventRecorder{},
		service.FitWeights{Capabilities: 0.60, Skills: 0.40},
		logger,
	)
	handler := NewRolesHandler(roleService, fitService, nil, logger)

	app := fiber.New()
	api := app.Group("/api/v1")
	handler.RegisterRoutes(api)
	return app
}

func decodeEnvelope(t *testing.T, resp *http.Response) (bool, json.RawMessage, errorBody) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   errorBody       `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Success, envelope.Data, envelope.Error
}

func TestRolesHandler_GetCandidateFit(t *testing.T) {
	role := &domain.Role{
		ID:           uuid.New(),
		Title:        "Backend Engineer",
		Capabilities: []string{"API design", "Mentoring"},
		Skills:       []string{"Go", "Postgres"},
		Status:       domain.RoleStatusOpen,
	}
	candidate := &domain.Candidate{
		ID:           uuid.New(),
		Name:         "Dana Reyes",
		Capabilities: []string{"api design", "mentoring"},
		Skills:       []string{"go", "postgres"},
	}

	app := newRolesTestApp(newStubCandidateRepo(candidate), newStubRoleRepo(role))

	url := "/api/v1/roles/" + role.ID.String() + "/candidates/" + candidate.ID.String() + "/fit"
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	success, data, _ := decodeEnvelope(t, resp)
	assert.True(t, success)

	var fit domain.FitScore
	require.NoError(t, json.Unmarshal(data, &fit))
	assert.Equal(t, 100.0, fit.Score)
	assert.Equal(t, domain.FitBucketStrong, fit.Bucket)
	assert.Equal(t, candidate.ID, fit.CandidateID)
	assert.Equal(t, role.ID, fit.RoleID)
}

func TestRolesHandler_GetCandidateFit_RoleNotFound(t *testing.T) {
	app := newRolesTestApp(newStubCandidateRepo(), newStubRoleRepo())

	url := "/api/v1/roles/" + uuid.NewString() + "/candidates/" + uuid.NewString() + "/fit"
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	success, _, errBody := decodeEnvelope(t, resp)
	assert.False(t, success)
	assert.Equal(t, "NOT_FOUND", errBody.Code)
}

func TestRolesHandler_GetCandidateFit_InvalidID(t *testing.T) {
	app := newRolesTestApp(newStubCandidateRepo(), newStubRoleRepo())

	url := "/api/v1/roles/not-a-uuid/candidates/" + uuid.NewString() + "/fit"
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	success, _, errBody := decodeEnvelope(t, resp)
	assert.False(t, success)
	assert.Equal(t, "INVALID_INPUT", errBody.Code)
}

func TestRolesHandler_CreateRole(t *testing.T) {
	roleRepo := newStubRoleRepo()
	app := newRolesTestApp(newStubCandidateRepo(), roleRepo)

	body, _ := json.Marshal(map[string]any{
		"title":        "Platform Engineer",
		"capabilities": []string{"Infrastructure"},
		"skills":       []string{"Go", "Kubernetes"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/roles", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	success, data, _ := decodeEnvelope(t, resp)
	assert.True(t, success)

	var role domain.Role
	require.NoError(t, json.Unmarshal(data, &role))
	assert.Equal(t, "Platform Engineer", role.Title)
	assert.Equal(t, domain.RoleStatusOpen, role.Status)
	assert.Len(t, roleRepo.roles, 1)
}

func TestRolesHandler_CreateRole_MissingCapabilities(t *testing.T) {
	app := newRolesTestApp(newStubCandidateRepo(), newStubRoleRepo())

	body, _ := json.Marshal(map[string]any{"title": "Platform Engineer"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/roles", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	success, _, errBody := decodeEnvelope(t, resp)
	assert.False(t, success)
	assert.Equal(t, "INVALID_INPUT", errBody.Code)
}

func TestRolesHandler_SetRoleStatus(t *testing.T) {
	role := &domain.Role{
		ID:     uuid.New(),
		Title:  "Backend Engineer",
		Status: domain.RoleStatusOpen,
	}
	app := newRolesTestApp(newStubCandidateRepo(), newStubRoleRepo(role))

	body, _ := json.Marshal(map[string]string{"status": "closed"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/roles/"+role.ID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, data, _ := decodeEnvelope(t, resp)
	var updated domain.Role
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, domain.RoleStatusClosed, updated.Status)
}

func TestRolesHandler_SetRoleStatus_InvalidStatus(t *testing.T) {
	role := &domain.Role{ID: uuid.New(), Title: "Backend Engineer", Status: domain.RoleStatusOpen}
	app := newRolesTestApp(newStubCandidateRepo(), newStubRoleRepo(role))

	body, _ := json.Marshal(map[string]string{"status": "archived"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/roles/"+role.ID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
