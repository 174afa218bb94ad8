package worker

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// DealRescorer sweeps previously scored deals
type DealRescorer interface {
	RescoreAll(ctx context.Context) (processed, skipped int, err error)
}

// RescoreWorker handles the periodic deal rescore sweep
type RescoreWorker struct {
	logger  *zap.Logger
	scoring DealRescorer
}

// NewRescoreWorker creates a new rescore worker
func NewRescoreWorker(logger *zap.Logger, scoring DealRescorer) *RescoreWorker {
	return &RescoreWorker{
		logger:  logger,
		scoring: scoring,
	}
}

// ProcessTask processes a rescore sweep task
func (w *RescoreWorker) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	w.logger.Info("starting deal rescore sweep")

	processed, skipped, err := w.scoring.RescoreAll(ctx)
	if err != nil {
		return err
	}

	w.logger.Info("deal rescore sweep finished",
		zap.Int("processed", processed),
		zap.Int("skipped", skipped),
	)
	return nil
}
