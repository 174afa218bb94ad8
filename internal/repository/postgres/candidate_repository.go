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

// CandidateRepository handles candidate profiles in PostgreSQL
type CandidateRepository struct {
	db *database.PostgresDB
}

// NewCandidateRepository creates a new candidate repository
func NewCandidateRepository(db *database.PostgresDB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// Create creates a new candidate
func (r *CandidateRepository) Create(ctx context.Context, candidate *domain.Candidate) error {
	query := `
		INSERT INTO candidates (id, name, email, headline, summary, capabilities, skills, years_experience, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		candidate.ID,
		candidate.Name,
		candidate.Email,
		candidate.Headline,
		candidate.Summary,
		candidate.Capabilities,
		candidate.Skills,
		candidate.YearsExp,
		candidate.CreatedAt,
		candidate.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}

	return nil
}

// GetByID retrieves a candidate by ID
func (r *CandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	query := `
		SELECT id, name, email, headline, summary, capabilities, skills, years_experience, created_at, updated_at
		FROM candidates
		WHERE id = $1
	`

	var candidate domain.Candidate
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&candidate.ID,
		&candidate.Name,
		&candidate.Email,
		&candidate.Headline,
		&candidate.Summary,
		&candidate.Capabilities,
		&candidate.Skills,
		&candidate.YearsExp,
		&candidate.CreatedAt,
		&candidate.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("candidate")
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	return &candidate, nil
}

// Update updates a candidate's profile fields
func (r *CandidateRepository) Update(ctx context.Context, candidate *domain.Candidate) error {
	query := `
		UPDATE candidates
		SET name = $2, email = $3, headline = $4, summary = $5, capabilities = $6, skills = $7, years_experience = $8, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		candidate.ID,
		candidate.Name,
		candidate.Email,
		candidate.Headline,
		candidate.Summary,
		candidate.Capabilities,
		candidate.Skills,
		candidate.YearsExp,
	)
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("candidate")
	}

	return nil
}

// Delete removes a candidate
func (r *CandidateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("candidate")
	}

	return nil
}

// List retrieves candidates with pagination, newest first
func (r *CandidateRepository) List(ctx context.Context, limit, offset int) (*domain.CandidateList, error) {
	query := `
		SELECT id, name, email, headline, summary, capabilities, skills, years_experience, created_at, updated_at,
		       COUNT(*) OVER() AS total_count
		FROM candidates
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	list := &domain.CandidateList{Candidates: []domain.Candidate{}}
	for rows.Next() {
		var candidate domain.Candidate
		if err := rows.Scan(
			&candidate.ID,
			&candidate.Name,
			&candidate.Email,
			&candidate.Headline,
			&candidate.Summary,
			&candidate.Capabilities,
			&candidate.Skills,
			&candidate.YearsExp,
			&candidate.CreatedAt,
			&candidate.UpdatedAt,
			&list.TotalCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		list.Candidates = append(list.Candidates, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	return list, nil
}

// ListIDs returns all candidate IDs, used by the re-embedding job
func (r *CandidateRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id FROM candidates`)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan candidate id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidate ids: %w", err)
	}

	return ids, nil
}
