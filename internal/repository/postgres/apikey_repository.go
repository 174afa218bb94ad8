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

// APIKeyRepository handles API key lookups in PostgreSQL
type APIKeyRepository struct {
	db *database.PostgresDB
}

// NewAPIKeyRepository creates a new API key repository
func NewAPIKeyRepository(db *database.PostgresDB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create stores a new API key
func (r *APIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	query := `
		INSERT INTO api_keys (id, name, prefix, secret_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		key.ID,
		key.Name,
		key.Prefix,
		key.SecretHash,
		key.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}

	return nil
}

// GetByPrefix retrieves an API key by its public prefix
func (r *APIKeyRepository) GetByPrefix(ctx context.Context, prefix string) (*domain.APIKey, error) {
	query := `
		SELECT id, name, prefix, secret_hash, last_used_at, created_at
		FROM api_keys
		WHERE prefix = $1
	`

	var key domain.APIKey
	err := r.db.Pool.QueryRow(ctx, query, prefix).Scan(
		&key.ID,
		&key.Name,
		&key.Prefix,
		&key.SecretHash,
		&key.LastUsedAt,
		&key.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("api key")
		}
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}

	return &key, nil
}

// TouchLastUsed updates the key's last-used timestamp
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, prefix string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW() WHERE prefix = $1`, prefix)
	if err != nil {
		return fmt.Errorf("failed to update api key last used: %w", err)
	}
	return nil
}

// Delete removes an API key
func (r *APIKeyRepository) Delete(ctx context.Context, prefix string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM api_keys WHERE prefix = $1`, prefix)
	if err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("api key")
	}
	return nil
}
