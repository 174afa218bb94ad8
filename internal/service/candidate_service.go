package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corvidhq/copilot-api/internal/domain"
)

// CandidateService handles candidate profile operations
type CandidateService struct {
	candidateRepo CandidateRepository
}

// NewCandidateService creates a new candidate service
func NewCandidateService(candidateRepo CandidateRepository) *CandidateService {
	return &CandidateService{candidateRepo: candidateRepo}
}

// Create creates a new candidate profile
func (s *CandidateService) Create(ctx context.Context, input *domain.CandidateInput) (*domain.Candidate, error) {
	now := time.Now().UTC()
	candidate := &domain.Candidate{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        input.Email,
		Headline:     input.Headline,
		Summary:      input.Summary,
		Capabilities: input.Capabilities,
		Skills:       input.Skills,
		YearsExp:     input.YearsExp,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if candidate.Capabilities == nil {
		candidate.Capabilities = []string{}
	}
	if candidate.Skills == nil {
		candidate.Skills = []string{}
	}

	if err := s.candidateRepo.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}

	return candidate, nil
}

// GetByID retrieves a candidate by ID
func (s *CandidateService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	return s.candidateRepo.GetByID(ctx, id)
}

// Update updates a candidate profile
func (s *CandidateService) Update(ctx context.Context, id uuid.UUID, input *domain.CandidateInput) (*domain.Candidate, error) {
	candidate, err := s.candidateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	candidate.Name = input.Name
	candidate.Email = input.Email
	candidate.Headline = input.Headline
	candidate.Summary = input.Summary
	candidate.Capabilities = input.Capabilities
	candidate.Skills = input.Skills
	candidate.YearsExp = input.YearsExp
	candidate.UpdatedAt = time.Now().UTC()
	if candidate.Capabilities == nil {
		candidate.Capabilities = []string{}
	}
	if candidate.Skills == nil {
		candidate.Skills = []string{}
	}

	if err := s.candidateRepo.Update(ctx, candidate); err != nil {
		return nil, fmt.Errorf("failed to update candidate: %w", err)
	}

	return candidate, nil
}

// Delete removes a candidate profile
func (s *CandidateService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.candidateRepo.Delete(ctx, id)
}

// List retrieves candidates with pagination
func (s *CandidateService) List(ctx context.Context, limit, offset int) (*domain.CandidateList, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.candidateRepo.List(ctx, limit, offset)
}

// ListIDs returns all candidate IDs for bulk re-embedding
func (s *CandidateService) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.candidateRepo.ListIDs(ctx)
}
