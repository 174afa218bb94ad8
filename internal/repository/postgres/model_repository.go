package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/corvidhq/copilot-api/internal/domain"
	"github.com/corvidhq/copilot-api/internal/pkg/database"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
)

// ModelRepository persists trained scoring models and training runs
type ModelRepository struct {
	db *database.PostgresDB
}

// NewModelRepository creates a new model repository
func NewModelRepository(db *database.PostgresDB) *ModelRepository {
	return &ModelRepository{db: db}
}

// CreateModel stores a trained model and marks it active, deactivating
// the previous active version in the same transaction.
func (r *ModelRepository) CreateModel(ctx context.Context, model *domain.ScoringModel) error {
	weights, err := json.Marshal(model.Weights)
	if err != nil {
		return fmt.Errorf("failed to marshal model weights: %w", err)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if model.Active {
		if _, err := tx.Exec(ctx, `UPDATE scoring_models SET active = FALSE WHERE active`); err != nil {
			return fmt.Errorf("failed to deactivate previous model: %w", err)
		}
	}

	query := `
		INSERT INTO scoring_models (id, version, weights, labeled_count, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.Exec(ctx, query,
		model.ID,
		model.Version,
		weights,
		model.Labeled,
		model.Active,
		model.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create scoring model: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit scoring model: %w", err)
	}

	return nil
}

// GetActiveModel returns the currently active scoring model
func (r *ModelRepository) GetActiveModel(ctx context.Context) (*domain.ScoringModel, error) {
	query := `
		SELECT id, version, weights, labeled_count, active, created_at
		FROM scoring_models
		WHERE active
		ORDER BY version DESC
		LIMIT 1
	`
	return r.scanModel(r.db.Pool.QueryRow(ctx, query))
}

// GetModelByVersion returns a specific model version
func (r *ModelRepository) GetModelByVersion(ctx context.Context, version int) (*domain.ScoringModel, error) {
	query := `
		SELECT id, version, weights, labeled_count, active, created_at
		FROM scoring_models
		WHERE version = $1
	`
	return r.scanModel(r.db.Pool.QueryRow(ctx, query, version))
}

// NextVersion returns the next model version number
func (r *ModelRepository) NextVersion(ctx context.Context) (int, error) {
	var version int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM scoring_models`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get next model version: %w", err)
	}
	return version, nil
}

func (r *ModelRepository) scanModel(row pgx.Row) (*domain.ScoringModel, error) {
	var model domain.ScoringModel
	var weights []byte
	err := row.Scan(
		&model.ID,
		&model.Version,
		&weights,
		&model.Labeled,
		&model.Active,
		&model.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("scoring model")
		}
		return nil, fmt.Errorf("failed to get scoring model: %w", err)
	}

	if err := json.Unmarshal(weights, &model.Weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model weights: %w", err)
	}

	return &model, nil
}

// CreateRun records a new training run
func (r *ModelRepository) CreateRun(ctx context.Context, run *domain.TrainingRun) error {
	query := `
		INSERT INTO training_runs (id, status, model_version, processed, skipped, error, started_at, finished_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		run.ID,
		run.Status,
		run.ModelVersion,
		run.Processed,
		run.Skipped,
		run.Error,
		run.StartedAt,
		run.FinishedAt,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create training run: %w", err)
	}

	return nil
}

// UpdateRun updates a training run's progress and status
func (r *ModelRepository) UpdateRun(ctx context.Context, run *domain.TrainingRun) error {
	query := `
		UPDATE training_runs
		SET status = $2, model_version = $3, processed = $4, skipped = $5, error = $6, started_at = $7, finished_at = $8
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		run.ID,
		run.Status,
		run.ModelVersion,
		run.Processed,
		run.Skipped,
		run.Error,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update training run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("training run")
	}

	return nil
}

// GetRunByID retrieves a training run by ID
func (r *ModelRepository) GetRunByID(ctx context.Context, id uuid.UUID) (*domain.TrainingRun, error) {
	query := `
		SELECT id, status, model_version, processed, skipped, error, started_at, finished_at, created_at
		FROM training_runs
		WHERE id = $1
	`

	var run domain.TrainingRun
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.Status,
		&run.ModelVersion,
		&run.Processed,
		&run.Skipped,
		&run.Error,
		&run.StartedAt,
		&run.FinishedAt,
		&run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("training run")
		}
		return nil, fmt.Errorf("failed to get training run: %w", err)
	}

	return &run, nil
}

// ListRuns retrieves recent training runs, newest first
func (r *ModelRepository) ListRuns(ctx context.Context, limit int) ([]domain.TrainingRun, error) {
	query := `
		SELECT id, status, model_version, processed, skipped, error, started_at, finished_at, created_at
		FROM training_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list training runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.TrainingRun{}
	for rows.Next() {
		var run domain.TrainingRun
		if err := rows.Scan(
			&run.ID,
			&run.Status,
			&run.ModelVersion,
			&run.Processed,
			&run.Skipped,
			&run.Error,
			&run.StartedAt,
			&run.FinishedAt,
			&run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate training runs: %w", err)
	}

	return runs, nil
}
