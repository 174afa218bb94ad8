// Package clickhouse holds the analytics repositories backed by ClickHouse.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/corvidhq/copilot-api/internal/domain"
	"github.com/corvidhq/copilot-api/internal/pkg/database"
)

// ScoreEventRepository records scoring occurrences in ClickHouse for analytics
type ScoreEventRepository struct {
	db *database.ClickHouseDB
}

// NewScoreEventRepository creates a new score event repository
func NewScoreEventRepository(db *database.ClickHouseDB) *ScoreEventRepository {
	return &ScoreEventRepository{db: db}
}

// Create inserts a single score event
func (r *ScoreEventRepository) Create(ctx context.Context, event *domain.ScoreEvent) error {
	query := `
		INSERT INTO score_events (kind, entity_id, score, bucket, model_version, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	err := r.db.Conn.Exec(ctx, query,
		string(event.Kind),
		event.EntityID,
		event.Score,
		event.Bucket,
		int32(event.ModelVersion),
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert score event: %w", err)
	}

	return nil
}

// CreateBatch inserts multiple score events in one batch
func (r *ScoreEventRepository) CreateBatch(ctx context.Context, events []*domain.ScoreEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := r.db.Conn.PrepareBatch(ctx, `
		INSERT INTO score_events (kind, entity_id, score, bucket, model_version, occurred_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, event := range events {
		if err := batch.Append(
			string(event.Kind),
			event.EntityID,
			event.Score,
			event.Bucket,
			int32(event.ModelVersion),
			event.OccurredAt,
		); err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	return nil
}

// Stats aggregates score events of a kind over a time window
func (r *ScoreEventRepository) Stats(ctx context.Context, kind domain.ScoreEventKind, from, to time.Time) (*domain.ScoreStats, error) {
	query := `
		SELECT
			count() AS event_count,
			avg(score) AS avg_score,
			min(score) AS min_score,
			max(score) AS max_score
		FROM score_events
		WHERE kind = ? AND occurred_at >= ? AND occurred_at < ?
	`

	stats := &domain.ScoreStats{Kind: kind, Buckets: map[string]uint64{}}
	row := r.db.Conn.QueryRow(ctx, query, string(kind), from, to)
	if err := row.Scan(&stats.Count, &stats.AvgScore, &stats.MinScore, &stats.MaxScore); err != nil {
		return nil, fmt.Errorf("failed to aggregate score events: %w", err)
	}

	if stats.Count == 0 {
		stats.AvgScore, stats.MinScore, stats.MaxScore = 0, 0, 0
		return stats, nil
	}

	bucketQuery := `
		SELECT bucket, count() AS event_count
		FROM score_events
		WHERE kind = ? AND occurred_at >= ? AND occurred_at < ?
		GROUP BY bucket
	`

	rows, err := r.db.Conn.Query(ctx, bucketQuery, string(kind), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate score buckets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bucket string
		var count uint64
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("failed to scan score bucket: %w", err)
		}
		stats.Buckets[bucket] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate score buckets: %w", err)
	}

	return stats, nil
}
