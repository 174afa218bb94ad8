package dto

// SemanticMatchRequest represents a fan-out semantic search request
type SemanticMatchRequest struct {
	Query       string   `json:"query" validate:"required,min=2,max=2000"`
	EntityTypes []string `json:"entityTypes" validate:"omitempty,max=3,dive,oneof=candidates roles deals"`
	Limit       int      `json:"limit" validate:"gte=0,lte=50"`
}

// ExplainMatchRequest asks for an LLM explanation of a candidate/role pair
type ExplainMatchRequest struct {
	CandidateID string `json:"candidateId" validate:"required,uuid4"`
	RoleID      string `json:"roleId" validate:"required,uuid4"`
}
