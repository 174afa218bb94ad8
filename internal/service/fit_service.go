package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/domain"
)

// CandidateRepository defines candidate repository operations
type CandidateRepository interface {
	Create(ctx context.Context, candidate *domain.Candidate) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error)
	Update(ctx context.Context, candidate *domain.Candidate) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) (*domain.CandidateList, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// RoleRepository defines role repository operations
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error)
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, status domain.RoleStatus, limit, offset int) (*domain.RoleList, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// ScoreEventRecorder records scoring occurrences for analytics
type ScoreEventRecorder interface {
	Create(ctx context.Context, event *domain.ScoreEvent) error
}

// FitWeights configures the per-category weights of the fit score
type FitWeights struct {
	Capabilities float64
	Skills       float64
}

// FitService scores candidates against roles and reports gaps
type FitService struct {
	candidateRepo CandidateRepository
	roleRepo      RoleRepository
	events        ScoreEventRecorder
	weights       FitWeights
	logger        *zap.Logger
}

// NewFitService creates a new fit service
func NewFitService(
	candidateRepo CandidateRepository,
	roleRepo RoleRepository,
	events ScoreEventRecorder,
	weights FitWeights,
	logger *zap.Logger,
) *FitService {
	return &FitService{
		candidateRepo: candidateRepo,
		roleRepo:      roleRepo,
		events:        events,
		weights:       weights,
		logger:        logger,
	}
}

// ComputeFit scores a candidate against a role and returns the score
// with a per-category gap report.
func (s *FitService) ComputeFit(ctx context.Context, roleID, candidateID uuid.UUID) (*domain.FitScore, error) {
	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	candidate, err := s.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	capWeight, skillWeight := effectiveWeights(
		s.weights.Capabilities, s.weights.Skills,
		len(role.Capabilities), len(role.Skills),
	)

	capGap := categoryGap(role.Capabilities, candidate.Capabilities, capWeight)
	skillGap := categoryGap(role.Skills, candidate.Skills, skillWeight)

	score := clamp(categoryScore(capGap)+categoryScore(skillGap), 0, 100)

	fit := &domain.FitScore{
		CandidateID:  candidateID,
		RoleID:       roleID,
		Score:        score,
		Bucket:       domain.FitBucketFor(score),
		Capabilities: capGap,
		Skills:       skillGap,
		ComputedAt:   time.Now().UTC(),
	}

	// Analytics is best effort; a recording failure never fails the request.
	event := &domain.ScoreEvent{
		Kind:       domain.ScoreEventFit,
		EntityID:   candidateID.String(),
		Score:      score,
		Bucket:     string(fit.Bucket),
		OccurredAt: fit.ComputedAt,
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Warn("failed to record fit score event",
			zap.String("candidate_id", candidateID.String()),
			zap.Error(err))
	}

	return fit, nil
}

// effectiveWeights redistributes a category's weight when the role has
// no requirements in it.
func effectiveWeights(capWeight, skillWeight float64, capCount, skillCount int) (float64, float64) {
	switch {
	case capCount == 0 && skillCount == 0:
		return 0, 0
	case capCount == 0:
		return 0, capWeight + skillWeight
	case skillCount == 0:
		return capWeight + skillWeight, 0
	default:
		return capWeight, skillWeight
	}
}

// categoryGap compares required entries against what the candidate has,
// matching case-insensitively on normalized tokens.
func categoryGap(required, have []string, weight float64) domain.CategoryGap {
	haveSet := make(map[string]struct{}, len(have))
	for _, h := range have {
		haveSet[normalizeToken(h)] = struct{}{}
	}

	gap := domain.CategoryGap{
		Weight:  weight,
		Matched: []string{},
		Missing: []string{},
	}
	for _, req := range required {
		if _, ok := haveSet[normalizeToken(req)]; ok {
			gap.Matched = append(gap.Matched, req)
		} else {
			gap.Missing = append(gap.Missing, req)
		}
	}
	return gap
}

func categoryScore(gap domain.CategoryGap) float64 {
	total := len(gap.Matched) + len(gap.Missing)
	if total == 0 {
		return 0
	}
	return gap.Weight * float64(len(gap.Matched)) / float64(total) * 100
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
