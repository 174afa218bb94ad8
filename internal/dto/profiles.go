package dto

// CreateCandidateRequest represents the request to create a candidate
type CreateCandidateRequest struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Email        string   `json:"email" validate:"required,email"`
	Headline     string   `json:"headline" validate:"required,max=300"`
	Summary      string   `json:"summary,omitempty" validate:"max=5000"`
	Capabilities []string `json:"capabilities" validate:"max=50,dive,min=1,max=100"`
	Skills       []string `json:"skills" validate:"max=100,dive,min=1,max=100"`
	YearsExp     int      `json:"yearsExperience" validate:"gte=0,lte=60"`
}

// UpdateCandidateRequest represents a partial candidate update
type UpdateCandidateRequest struct {
	Headline     *string  `json:"headline,omitempty" validate:"omitempty,max=300"`
	Summary      *string  `json:"summary,omitempty" validate:"omitempty,max=5000"`
	Capabilities []string `json:"capabilities,omitempty" validate:"omitempty,max=50,dive,min=1,max=100"`
	Skills       []string `json:"skills,omitempty" validate:"omitempty,max=100,dive,min=1,max=100"`
	YearsExp     *int     `json:"yearsExperience,omitempty" validate:"omitempty,gte=0,lte=60"`
}

// CreateRoleRequest represents the request to create a role
type CreateRoleRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description,omitempty" validate:"max=10000"`
	Capabilities []string `json:"capabilities" validate:"required,min=1,max=50,dive,min=1,max=100"`
	Skills       []string `json:"skills" validate:"max=100,dive,min=1,max=100"`
	MinYearsExp  int      `json:"minYearsExperience" validate:"gte=0,lte=60"`
}

// UpdateRoleRequest represents a partial role update
type UpdateRoleRequest struct {
	Title        *string  `json:"title,omitempty" validate:"omitempty,max=200"`
	Description  *string  `json:"description,omitempty" validate:"omitempty,max=10000"`
	Capabilities []string `json:"capabilities,omitempty" validate:"omitempty,min=1,max=50,dive,min=1,max=100"`
	Skills       []string `json:"skills,omitempty" validate:"omitempty,max=100,dive,min=1,max=100"`
	MinYearsExp  *int     `json:"minYearsExperience,omitempty" validate:"omitempty,gte=0,lte=60"`
}

// SetRoleStatusRequest changes a role's lifecycle state
type SetRoleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open closed"`
}
