package domain

import (
	"time"

	"github.com/google/uuid"
)

// FitBucket is the qualitative label assigned to a fit score
type FitBucket string

const (
	FitBucketStrong  FitBucket = "strong_fit"
	FitBucketGood    FitBucket = "good_fit"
	FitBucketPartial FitBucket = "partial_fit"
	FitBucketWeak    FitBucket = "weak_fit"
)

// FitBucketFor maps a 0-100 score to its qualitative bucket.
func FitBucketFor(score float64) FitBucket {
	switch {
	case score >= 80:
		return FitBucketStrong
	case score >= 60:
		return FitBucketGood
	case score >= 40:
		return FitBucketPartial
	default:
		return FitBucketWeak
	}
}

// CategoryGap reports the matched and missing requirements for one
// scoring category.
type CategoryGap struct {
	Weight  float64  `json:"weight"`
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
}

// FitScore is the result of scoring a candidate against a role
type FitScore struct {
	CandidateID  uuid.UUID   `json:"candidateId"`
	RoleID       uuid.UUID   `json:"roleId"`
	Score        float64     `json:"score"`
	Bucket       FitBucket   `json:"bucket"`
	Capabilities CategoryGap `json:"capabilities"`
	Skills       CategoryGap `json:"skills"`
	ComputedAt   time.Time   `json:"computedAt"`
}
