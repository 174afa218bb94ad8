package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/corvidhq/copilot-api/internal/domain"
	"github.com/corvidhq/copilot-api/internal/pkg/database"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
)

// DealScoreRepository persists deal scoring results in PostgreSQL
type DealScoreRepository struct {
	db *database.PostgresDB
}

// NewDealScoreRepository creates a new deal score repository
func NewDealScoreRepository(db *database.PostgresDB) *DealScoreRepository {
	return &DealScoreRepository{db: db}
}

// Upsert stores the latest score for a deal, replacing any prior score.
func (r *DealScoreRepository) Upsert(ctx context.Context, score *domain.DealScore) error {
	query := `
		INSERT INTO deal_scores (id, deal_id, model_version, score, bucket, industry, stage, amount_band, lead_source, company_size, scored_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (deal_id) DO UPDATE
		SET model_version = EXCLUDED.model_version,
		    score = EXCLUDED.score,
		    bucket = EXCLUDED.bucket,
		    industry = EXCLUDED.industry,
		    stage = EXCLUDED.stage,
		    amount_band = EXCLUDED.amount_band,
		    lead_source = EXCLUDED.lead_source,
		    company_size = EXCLUDED.company_size,
		    scored_at = EXCLUDED.scored_at
	`

	_, err := r.db.Pool.Exec(ctx, query,
		score.ID,
		score.DealID,
		score.ModelVersion,
		score.Score,
		score.Bucket,
		score.Features.Industry,
		score.Features.Stage,
		score.Features.AmountBand,
		score.Features.LeadSource,
		score.Features.CompanySize,
		score.ScoredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert deal score: %w", err)
	}

	return nil
}

// GetByDealID retrieves the latest score for a deal
func (r *DealScoreRepository) GetByDealID(ctx context.Context, dealID string) (*domain.DealScore, error) {
	query := `
		SELECT id, deal_id, model_version, score, bucket, industry, stage, amount_band, lead_source, company_size, scored_at
		FROM deal_scores
		WHERE deal_id = $1
	`

	var score domain.DealScore
	err := r.db.Pool.QueryRow(ctx, query, dealID).Scan(
		&score.ID,
		&score.DealID,
		&score.ModelVersion,
		&score.Score,
		&score.Bucket,
		&score.Features.Industry,
		&score.Features.Stage,
		&score.Features.AmountBand,
		&score.Features.LeadSource,
		&score.Features.CompanySize,
		&score.ScoredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("deal score")
		}
		return nil, fmt.Errorf("failed to get deal score: %w", err)
	}

	return &score, nil
}

// ListByBucket retrieves scored deals in a bucket, highest score first
func (r *DealScoreRepository) ListByBucket(ctx context.Context, bucket domain.DealBucket, limit int) ([]domain.DealScore, error) {
	query := `
		SELECT id, deal_id, model_version, score, bucket, industry, stage, amount_band, lead_source, company_size, scored_at
		FROM deal_scores
		WHERE bucket = $1
		ORDER BY score DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, bucket, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list deal scores: %w", err)
	}
	defer rows.Close()

	scores := []domain.DealScore{}
	for rows.Next() {
		var score domain.DealScore
		if err := rows.Scan(
			&score.ID,
			&score.DealID,
			&score.ModelVersion,
			&score.Score,
			&score.Bucket,
			&score.Features.Industry,
			&score.Features.Stage,
			&score.Features.AmountBand,
			&score.Features.LeadSource,
			&score.Features.CompanySize,
			&score.ScoredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deal score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deal scores: %w", err)
	}

	return scores, nil
}

// CreateClassification records a label written back to the CRM
func (r *DealScoreRepository) CreateClassification(ctx context.Context, c *domain.DealClassification) error {
	query := `
		INSERT INTO deal_classifications (deal_id, label, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (deal_id) DO UPDATE
		SET label = EXCLUDED.label, created_at = EXCLUDED.created_at
	`

	_, err := r.db.Pool.Exec(ctx, query, c.DealID, c.Label, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record deal classification: %w", err)
	}

	return nil
}
