package domain

// MatchEntityType identifies a namespace in the vector index
type MatchEntityType string

const (
	MatchEntityCandidate MatchEntityType = "candidates"
	MatchEntityRole      MatchEntityType = "roles"
	MatchEntityDeal      MatchEntityType = "deals"
)

// ValidMatchEntityType reports whether t names a searchable namespace.
func ValidMatchEntityType(t MatchEntityType) bool {
	switch t {
	case MatchEntityCandidate, MatchEntityRole, MatchEntityDeal:
		return true
	}
	return false
}

// SemanticMatch is a nearest-neighbor hit from the vector index
type SemanticMatch struct {
	EntityType MatchEntityType   `json:"entityType"`
	EntityID   string            `json:"entityId"`
	Similarity float64           `json:"similarity"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// MatchResult is the merged, sorted, truncated result of a fan-out search
type MatchResult struct {
	Query   string          `json:"query"`
	Matches []SemanticMatch `json:"matches"`
}
