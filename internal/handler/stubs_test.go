package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/corvidhq/copilot-api/internal/domain"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
	"github.com/corvidhq/copilot-api/internal/vector/pinecone"
)

// stubCandidateRepo serves a fixed set of candidates keyed by ID.
type stubCandidateRepo struct {
	candidates map[uuid.UUID]*domain.Candidate
	created    []*domain.Candidate
}

func newStubCandidateRepo(candidates ...*domain.Candidate) *stubCandidateRepo {
	repo := &stubCandidateRepo{candidates: make(map[uuid.UUID]*domain.Candidate)}
	for _, c := range candidates {
		repo.candidates[c.ID] = c
	}
	return repo
}

func (r *stubCandidateRepo) Create(_ context.Context, candidate *domain.Candidate) error {
	r.candidates[candidate.ID] = candidate
	r.created = append(r.created, candidate)
	return nil
}

func (r *stubCandidateRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Candidate, error) {
	candidate, ok := r.candidates[id]
	if !ok {
		return nil, apperrors.NotFound("candidate")
	}
	return candidate, nil
}

func (r *stubCandidateRepo) Update(_ context.Context, candidate *domain.Candidate) error {
	if _, ok := r.candidates[candidate.ID]; !ok {
		return apperrors.NotFound("candidate")
	}
	r.candidates[candidate.ID] = candidate
	return nil
}

func (r *stubCandidateRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.candidates[id]; !ok {
		return apperrors.NotFound("candidate")
	}
	delete(r.candidates, id)
	return nil
}

func (r *stubCandidateRepo) List(context.Context, int, int) (*domain.CandidateList, error) {
	list := &domain.CandidateList{Candidates: []domain.Candidate{}}
	for _, c := range r.candidates {
		list.Candidates = append(list.Candidates, *c)
	}
	list.TotalCount = len(list.Candidates)
	return list, nil
}

func (r *stubCandidateRepo) ListIDs(context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(r.candidates))
	for id := range r.candidates {
		ids = append(ids, id)
	}
	return ids, nil
}

// stubRoleRepo serves a fixed set of roles keyed by ID.
type stubRoleRepo struct {
	roles map[uuid.UUID]*domain.Role
}

func newStubRoleRepo(roles ...*domain.Role) *stubRoleRepo {
	repo := &stubRoleRepo{roles: make(map[uuid.UUID]*domain.Role)}
	for _, r := range roles {
		repo.roles[r.ID] = r
	}
	return repo
}

func (r *stubRoleRepo) Create(_ context.Context, role *domain.Role) error {
	r.roles[role.ID] = role
	return nil
}

func (r *stubRoleRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, apperrors.NotFound("role")
	}
	return role, nil
}

func (r *stubRoleRepo) Update(_ context.Context, role *domain.Role) error {
	if _, ok := r.roles[role.ID]; !ok {
		return apperrors.NotFound("role")
	}
	r.roles[role.ID] = role
	return nil
}

func (r *stubRoleRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.roles[id]; !ok {
		return apperrors.NotFound("role")
	}
	delete(r.roles, id)
	return nil
}

func (r *stubRoleRepo) List(context.Context, domain.RoleStatus, int, int) (*domain.RoleList, error) {
	list := &domain.RoleList{Roles: []domain.Role{}}
	for _, role := range r.roles {
		list.Roles = append(list.Roles, *role)
	}
	list.TotalCount = len(list.Roles)
	return list, nil
}

func (r *stubRoleRepo) ListIDs(context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(r.roles))
	for id := range r.roles {
		ids = append(ids, id)
	}
	return ids, nil
}

// stubEventRecorder swallows score events.
type stubEventRecorder struct {
	events []*domain.ScoreEvent
}

func (r *stubEventRecorder) Create(_ context.Context, event *domain.ScoreEvent) error {
	r.events = append(r.events, event)
	return nil
}

// stubQueryEmbedder returns a fixed vector for any text.
type stubQueryEmbedder struct {
	values []float32
}

func (e *stubQueryEmbedder) EmbedOne(context.Context, string) ([]float32, error) {
	return e.values, nil
}

// stubVectorIndex serves per-namespace canned matches.
type stubVectorIndex struct {
	matches map[string][]pinecone.QueryMatch
}

func (i *stubVectorIndex) Query(_ context.Context, namespace string, _ []float32, _ int) ([]pinecone.QueryMatch, error) {
	return i.matches[namespace], nil
}
