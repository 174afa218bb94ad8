package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/corvidhq/copilot-api/internal/domain"
	"github.com/corvidhq/copilot-api/internal/pkg/database"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
)

// RoleRepository handles role postings in PostgreSQL
type RoleRepository struct {
	db *database.PostgresDB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *database.PostgresDB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Create creates a new role
func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	query := `
		INSERT INTO roles (id, title, description, capabilities, skills, min_years_experience, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		role.ID,
		role.Title,
		role.Description,
		role.Capabilities,
		role.Skills,
		role.MinYearsExp,
		role.Status,
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	return nil
}

// GetByID retrieves a role by ID
func (r *RoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	query := `
		SELECT id, title, description, capabilities, skills, min_years_experience, status, created_at, updated_at
		FROM roles
		WHERE id = $1
	`

	var role domain.Role
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&role.ID,
		&role.Title,
		&role.Description,
		&role.Capabilities,
		&role.Skills,
		&role.MinYearsExp,
		&role.Status,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("role")
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return &role, nil
}

// Update updates a role's posting fields
func (r *RoleRepository) Update(ctx context.Context, role *domain.Role) error {
	query := `
		UPDATE roles
		SET title = $2, description = $3, capabilities = $4, skills = $5, min_years_experience = $6, status = $7, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		role.ID,
		role.Title,
		role.Description,
		role.Capabilities,
		role.Skills,
		role.MinYearsExp,
		role.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("role")
	}

	return nil
}

// Delete removes a role
func (r *RoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("role")
	}

	return nil
}

// List retrieves roles with pagination, optionally filtered by status
func (r *RoleRepository) List(ctx context.Context, status domain.RoleStatus, limit, offset int) (*domain.RoleList, error) {
	query := `
		SELECT id, title, description, capabilities, skills, min_years_experience, status, created_at, updated_at,
		       COUNT(*) OVER() AS total_count
		FROM roles
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	list := &domain.RoleList{Roles: []domain.Role{}}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(
			&role.ID,
			&role.Title,
			&role.Description,
			&role.Capabilities,
			&role.Skills,
			&role.MinYearsExp,
			&role.Status,
			&role.CreatedAt,
			&role.UpdatedAt,
			&list.TotalCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		list.Roles = append(list.Roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roles: %w", err)
	}

	return list, nil
}

// ListIDs returns all role IDs, used by the re-embedding job
func (r *RoleRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id FROM roles`)
	if err != nil {
		return nil, fmt.Errorf("failed to list role ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan role id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate role ids: %w", err)
	}

	return ids, nil
}
