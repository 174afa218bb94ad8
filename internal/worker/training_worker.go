package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TrainingRunner executes training runs
type TrainingRunner interface {
	Train(ctx context.Context, runID uuid.UUID, snapshot bool) error
}

// TrainingWorker handles training run tasks
type TrainingWorker struct {
	logger   *zap.Logger
	training TrainingRunner
}

// NewTrainingWorker creates a new training worker
func NewTrainingWorker(logger *zap.Logger, training TrainingRunner) *TrainingWorker {
	return &TrainingWorker{
		logger:   logger,
		training: training,
	}
}

// ProcessTask processes a training run task
func (w *TrainingWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload TrainingRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal training run payload: %w", err)
	}

	w.logger.Info("processing training run",
		zap.String("run_id", payload.RunID.String()),
	)

	if err := w.training.Train(ctx, payload.RunID, payload.SnapshotEnabled); err != nil {
		// The run record already carries the failure; don't retry a
		// run that has been marked failed.
		w.logger.Error("training run failed",
			zap.String("run_id", payload.RunID.String()),
			zap.Error(err),
		)
		return nil
	}

	w.logger.Info("training run completed",
		zap.String("run_id", payload.RunID.String()),
	)
	return nil
}
