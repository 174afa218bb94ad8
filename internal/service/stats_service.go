package service

import (
	"context"
	"fmt"
	"time"

	"github.com/corvidhq/copilot-api/internal/domain"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
)

// defaultStatsWindow is used when the caller does not bound the query.
const defaultStatsWindow = 7 * 24 * time.Hour

// ScoreEventReader aggregates score events from the analytics store
type ScoreEventReader interface {
	Stats(ctx context.Context, kind domain.ScoreEventKind, from, to time.Time) (*domain.ScoreStats, error)
}

// StatsService serves score analytics for the internal API group
type StatsService struct {
	events ScoreEventReader
}

// NewStatsService creates a new stats service
func NewStatsService(events ScoreEventReader) *StatsService {
	return &StatsService{events: events}
}

// ScoreStats aggregates score events of a kind over a window ending now.
func (s *StatsService) ScoreStats(ctx context.Context, kind domain.ScoreEventKind, window time.Duration) (*domain.ScoreStats, error) {
	if kind != domain.ScoreEventFit && kind != domain.ScoreEventDeal {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown score kind %q", kind))
	}
	if window <= 0 {
		window = defaultStatsWindow
	}

	to := time.Now().UTC()
	from := to.Add(-window)

	stats, err := s.events.Stats(ctx, kind, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate score stats: %w", err)
	}
	return stats, nil
}
