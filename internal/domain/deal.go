package domain

import (
	"time"

	"github.com/google/uuid"
)

// DealLabel is the user-assigned training signal on a CRM deal
type DealLabel string

const (
	DealLabelIdeal     DealLabel = "ideal"
	DealLabelLessIdeal DealLabel = "less_ideal"
)

// ValidDealLabel reports whether l is a known classification label.
func ValidDealLabel(l DealLabel) bool {
	return l == DealLabelIdeal || l == DealLabelLessIdeal
}

// DealBucket is the qualitative label assigned to a deal score
type DealBucket string

const (
	DealBucketHot  DealBucket = "hot"
	DealBucketWarm DealBucket = "warm"
	DealBucketCool DealBucket = "cool"
	DealBucketCold DealBucket = "cold"
)

// DealBucketFor maps a 0-100 score to its qualitative bucket.
func DealBucketFor(score float64) DealBucket {
	switch {
	case score >= 75:
		return DealBucketHot
	case score >= 55:
		return DealBucketWarm
	case score >= 35:
		return DealBucketCool
	default:
		return DealBucketCold
	}
}

// DealFeatures are the attributes of a CRM deal the scoring model weighs
type DealFeatures struct {
	Industry    string `json:"industry"`
	Stage       string `json:"stage"`
	AmountBand  string `json:"amountBand"`
	LeadSource  string `json:"leadSource"`
	CompanySize string `json:"companySize"`
}

// Values returns the feature values keyed by feature name, skipping empties.
func (f DealFeatures) Values() map[string]string {
	values := make(map[string]string, 5)
	set := func(name, value string) {
		if value != "" {
			values[name] = value
		}
	}
	set("industry", f.Industry)
	set("stage", f.Stage)
	set("amount_band", f.AmountBand)
	set("lead_source", f.LeadSource)
	set("company_size", f.CompanySize)
	return values
}

// DealScore is a persisted scoring result for a CRM deal
type DealScore struct {
	ID           uuid.UUID    `json:"id"`
	DealID       string       `json:"dealId"`
	ModelVersion int          `json:"modelVersion"`
	Score        float64      `json:"score"`
	Bucket       DealBucket   `json:"bucket"`
	Features     DealFeatures `json:"features"`
	ScoredAt     time.Time    `json:"scoredAt"`
}

// DealClassification mirrors a label written to the CRM
type DealClassification struct {
	DealID    string    `json:"dealId"`
	Label     DealLabel `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}
