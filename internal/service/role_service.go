package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corvidhq/copilot-api/internal/domain"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
)

// RoleService handles role posting operations
type RoleService struct {
	roleRepo RoleRepository
}

// NewRoleService creates a new role service
func NewRoleService(roleRepo RoleRepository) *RoleService {
	return &RoleService{roleRepo: roleRepo}
}

// Create creates a new open role
func (s *RoleService) Create(ctx context.Context, input *domain.RoleInput) (*domain.Role, error) {
	now := time.Now().UTC()
	role := &domain.Role{
		ID:           uuid.New(),
		Title:        input.Title,
		Description:  input.Description,
		Capabilities: input.Capabilities,
		Skills:       input.Skills,
		MinYearsExp:  input.MinYearsExp,
		Status:       domain.RoleStatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if role.Capabilities == nil {
		role.Capabilities = []string{}
	}
	if role.Skills == nil {
		role.Skills = []string{}
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	return role, nil
}

// GetByID retrieves a role by ID
func (s *RoleService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	return s.roleRepo.GetByID(ctx, id)
}

// Update updates a role posting
func (s *RoleService) Update(ctx context.Context, id uuid.UUID, input *domain.RoleInput) (*domain.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role.Title = input.Title
	role.Description = input.Description
	role.Capabilities = input.Capabilities
	role.Skills = input.Skills
	role.MinYearsExp = input.MinYearsExp
	role.UpdatedAt = time.Now().UTC()
	if role.Capabilities == nil {
		role.Capabilities = []string{}
	}
	if role.Skills == nil {
		role.Skills = []string{}
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	return role, nil
}

// SetStatus opens or closes a role
func (s *RoleService) SetStatus(ctx context.Context, id uuid.UUID, status domain.RoleStatus) (*domain.Role, error) {
	if status != domain.RoleStatusOpen && status != domain.RoleStatusClosed {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown role status %q", status))
	}

	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role.Status = status
	role.UpdatedAt = time.Now().UTC()
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to update role status: %w", err)
	}

	return role, nil
}

// Delete removes a role posting
func (s *RoleService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.roleRepo.Delete(ctx, id)
}

// List retrieves roles with pagination, optionally filtered by status
func (s *RoleService) List(ctx context.Context, status domain.RoleStatus, limit, offset int) (*domain.RoleList, error) {
	if status != "" && status != domain.RoleStatusOpen && status != domain.RoleStatusClosed {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown role status %q", status))
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.roleRepo.List(ctx, status, limit, offset)
}

// ListIDs returns all role IDs for bulk re-embedding
func (s *RoleService) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.roleRepo.ListIDs(ctx)
}
