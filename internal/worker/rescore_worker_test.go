package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/google/uuid"
)

type stubRescorer struct {
	processed int
	skipped   int
	err       error
	calls     int
}

func (s *stubRescorer) RescoreAll(context.Context) (int, int, error) {
	s.calls++
	return s.processed, s.skipped, s.err
}

type stubTrainer struct {
	err   error
	runID uuid.UUID
}

func (s *stubTrainer) Train(_ context.Context, runID uuid.UUID, _ bool) error {
	s.runID = runID
	return s.err
}

func TestRescoreWorker_ProcessTask(t *testing.T) {
	rescorer := &stubRescorer{processed: 12, skipped: 2}
	worker := NewRescoreWorker(zap.NewNop(), rescorer)

	err := worker.ProcessTask(context.Background(), NewDealRescoreTask())
	require.NoError(t, err)
	assert.Equal(t, 1, rescorer.calls)
}

func TestRescoreWorker_ProcessTask_Error(t *testing.T) {
	rescorer := &stubRescorer{err: errors.New("crm unavailable")}
	worker := NewRescoreWorker(zap.NewNop(), rescorer)

	err := worker.ProcessTask(context.Background(), NewDealRescoreTask())
	assert.Error(t, err)
}

func TestTrainingWorker_ProcessTask(t *testing.T) {
	trainer := &stubTrainer{}
	worker := NewTrainingWorker(zap.NewNop(), trainer)

	runID := uuid.New()
	task, err := NewTrainingRunTask(&TrainingRunPayload{RunID: runID})
	require.NoError(t, err)

	require.NoError(t, worker.ProcessTask(context.Background(), task))
	assert.Equal(t, runID, trainer.runID)
}

func TestTrainingWorker_ProcessTask_FailedRunNotRetried(t *testing.T) {
	trainer := &stubTrainer{err: errors.New("no labeled deals to train on")}
	worker := NewTrainingWorker(zap.NewNop(), trainer)

	task, err := NewTrainingRunTask(&TrainingRunPayload{RunID: uuid.New()})
	require.NoError(t, err)

	// The run record carries the failure; the task itself succeeds.
	assert.NoError(t, worker.ProcessTask(context.Background(), task))
}

func TestTrainingWorker_InvalidPayload(t *testing.T) {
	worker := NewTrainingWorker(zap.NewNop(), &stubTrainer{})

	err := worker.ProcessTask(context.Background(), asynq.NewTask(TypeTrainingRun, []byte("not json")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
