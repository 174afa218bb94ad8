package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/corvidhq/copilot-api/internal/domain"
)

// NewTestCandidate creates a candidate with default values.
func NewTestCandidate() *domain.Candidate {
	return &domain.Candidate{
		ID:           uuid.New(),
		Name:         "Test Candidate",
		Email:        "candidate-" + uuid.NewString()[:8] + "@example.com",
		Headline:     "Senior Backend Engineer",
		Summary:      "Builds distributed systems.",
		Capabilities: []string{"backend", "distributed-systems"},
		Skills:       []string{"go", "postgres"},
		YearsExp:     7,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// NewTestRole creates an open role with default values.
func NewTestRole() *domain.Role {
	return &domain.Role{
		ID:           uuid.New(),
		Title:        "Backend Engineer",
		Description:  "Own the scoring pipeline.",
		Capabilities: []string{"backend"},
		Skills:       []string{"go"},
		MinYearsExp:  3,
		Status:       domain.RoleStatusOpen,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// NewTestAPIKey creates an API key record with default values.
// The stored hash does not correspond to a real secret.
func NewTestAPIKey(name string) *domain.APIKey {
	return &domain.APIKey{
		ID:         uuid.New(),
		Name:       name,
		Prefix:     uuid.NewString()[:12],
		SecretHash: "$2a$10$testhash",
		CreatedAt:  time.Now(),
	}
}
