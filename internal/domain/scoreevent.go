package domain

import "time"

// ScoreEventKind distinguishes fit scores from deal scores in analytics
type ScoreEventKind string

const (
	ScoreEventFit  ScoreEventKind = "fit"
	ScoreEventDeal ScoreEventKind = "deal"
)

// ScoreEvent is one scoring occurrence recorded for analytics
type ScoreEvent struct {
	Kind         ScoreEventKind `json:"kind"`
	EntityID     string         `json:"entityId"`
	Score        float64        `json:"score"`
	Bucket       string         `json:"bucket"`
	ModelVersion int            `json:"modelVersion"`
	OccurredAt   time.Time      `json:"occurredAt"`
}

// ScoreStats aggregates score events over a window
type ScoreStats struct {
	Kind     ScoreEventKind    `json:"kind"`
	Count    uint64            `json:"count"`
	AvgScore float64           `json:"avgScore"`
	MinScore float64           `json:"minScore"`
	MaxScore float64           `json:"maxScore"`
	Buckets  map[string]uint64 `json:"buckets"`
}
