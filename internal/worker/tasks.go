package worker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// TypeTrainingRun is the task type for executing a training run
	TypeTrainingRun = "training:run"
	// TypeCandidateEmbedding is the task type for (re)embedding a candidate
	TypeCandidateEmbedding = "embedding:candidate"
	// TypeRoleEmbedding is the task type for (re)embedding a role
	TypeRoleEmbedding = "embedding:role"
	// TypeDealRescore is the task type for the nightly deal rescore sweep
	TypeDealRescore = "scoring:rescore"
)

// TrainingRunPayload is the payload for training run tasks
type TrainingRunPayload struct {
	RunID uuid.UUID `json:"run_id"`
	// SnapshotEnabled controls whether the trained model is also written
	// to object storage.
	SnapshotEnabled bool `json:"snapshot_enabled"`
}

// NewTrainingRunTask creates a training run task
func NewTrainingRunTask(payload *TrainingRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal training run payload: %w", err)
	}
	return asynq.NewTask(TypeTrainingRun, data, asynq.MaxRetry(1), asynq.Timeout(30*time.Minute)), nil
}

// EmbeddingPayload is the payload for candidate and role embedding tasks
type EmbeddingPayload struct {
	EntityID uuid.UUID `json:"entity_id"`
	// Deleted signals that the entity was removed and its vector should
	// be dropped from the index instead of refreshed.
	Deleted bool `json:"deleted,omitempty"`
}

// NewCandidateEmbeddingTask creates a candidate embedding task
func NewCandidateEmbeddingTask(payload *EmbeddingPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding payload: %w", err)
	}
	return asynq.NewTask(TypeCandidateEmbedding, data, asynq.MaxRetry(3), asynq.Timeout(2*time.Minute)), nil
}

// NewRoleEmbeddingTask creates a role embedding task
func NewRoleEmbeddingTask(payload *EmbeddingPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding payload: %w", err)
	}
	return asynq.NewTask(TypeRoleEmbedding, data, asynq.MaxRetry(3), asynq.Timeout(2*time.Minute)), nil
}

// NewDealRescoreTask creates a deal rescore task
func NewDealRescoreTask() *asynq.Task {
	return asynq.NewTask(TypeDealRescore, []byte(`{}`), asynq.MaxRetry(1), asynq.Timeout(time.Hour))
}

// EnqueueTrainingRun enqueues a training run task
func EnqueueTrainingRun(client *asynq.Client, payload *TrainingRunPayload) error {
	task, err := NewTrainingRunTask(payload)
	if err != nil {
		return err
	}
	_, err = client.Enqueue(task, asynq.Queue("critical"))
	return err
}

// EnqueueCandidateEmbedding enqueues a candidate embedding task
func EnqueueCandidateEmbedding(client *asynq.Client, payload *EmbeddingPayload) error {
	task, err := NewCandidateEmbeddingTask(payload)
	if err != nil {
		return err
	}
	_, err = client.Enqueue(task, asynq.Queue("default"))
	return err
}

// EnqueueRoleEmbedding enqueues a role embedding task
func EnqueueRoleEmbedding(client *asynq.Client, payload *EmbeddingPayload) error {
	task, err := NewRoleEmbeddingTask(payload)
	if err != nil {
		return err
	}
	_, err = client.Enqueue(task, asynq.Queue("default"))
	return err
}

// EnqueueDealRescore enqueues a full rescore sweep
func EnqueueDealRescore(client *asynq.Client) error {
	_, err := client.Enqueue(NewDealRescoreTask(), asynq.Queue("low"))
	return err
}
