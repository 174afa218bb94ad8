package worker

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTrainingRunner struct {
	runID    uuid.UUID
	snapshot bool
	err      error
}

func (s *stubTrainingRunner) Train(_ context.Context, runID uuid.UUID, snapshot bool) error {
	s.runID = runID
	s.snapshot = snapshot
	return s.err
}

func TestTrainingWorker_PassesSnapshotFlag(t *testing.T) {
	runner := &stubTrainingRunner{}
	w := NewTrainingWorker(zap.NewNop(), runner)

	payload := &TrainingRunPayload{RunID: uuid.New(), SnapshotEnabled: true}
	task, err := NewTrainingRunTask(payload)
	require.NoError(t, err)

	require.NoError(t, w.ProcessTask(context.Background(), task))
	assert.Equal(t, payload.RunID, runner.runID)
	assert.True(t, runner.snapshot)
}

func TestTrainingWorker_FailedRunNotRetried(t *testing.T) {
	runner := &stubTrainingRunner{err: assert.AnError}
	w := NewTrainingWorker(zap.NewNop(), runner)

	task, err := NewTrainingRunTask(&TrainingRunPayload{RunID: uuid.New()})
	require.NoError(t, err)

	// The run record carries the failure; asynq must not see an error.
	assert.NoError(t, w.ProcessTask(context.Background(), task))
}
