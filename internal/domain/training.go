package domain

import (
	"time"

	"github.com/google/uuid"
)

// TrainingRunStatus is the lifecycle state of a training run
type TrainingRunStatus string

const (
	TrainingRunPending   TrainingRunStatus = "pending"
	TrainingRunRunning   TrainingRunStatus = "running"
	TrainingRunCompleted TrainingRunStatus = "completed"
	TrainingRunFailed    TrainingRunStatus = "failed"
)

// TrainingRun tracks one execution of the deal-scoring training pipeline
type TrainingRun struct {
	ID           uuid.UUID         `json:"id"`
	Status       TrainingRunStatus `json:"status"`
	ModelVersion int               `json:"modelVersion,omitempty"`
	Processed    int               `json:"processed"`
	Skipped      int               `json:"skipped"`
	Error        string            `json:"error,omitempty"`
	StartedAt    *time.Time        `json:"startedAt,omitempty"`
	FinishedAt   *time.Time        `json:"finishedAt,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// ScoringModel is a trained set of per-feature-value weights
type ScoringModel struct {
	ID        uuid.UUID          `json:"id"`
	Version   int                `json:"version"`
	Weights   map[string]float64 `json:"weights"`
	Labeled   int                `json:"labeledCount"`
	Active    bool               `json:"active"`
	CreatedAt time.Time          `json:"createdAt"`
}

// WeightKey builds the weights map key for a feature/value pair.
func WeightKey(feature, value string) string {
	return feature + ":" + value
}
