package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Candidate is an HR copilot candidate profile
type Candidate struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Headline     string    `json:"headline"`
	Summary      string    `json:"summary,omitempty"`
	Capabilities []string  `json:"capabilities"`
	Skills       []string  `json:"skills"`
	YearsExp     int       `json:"yearsExperience"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CandidateInput holds the fields accepted when creating or updating a candidate
type CandidateInput struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Headline     string   `json:"headline"`
	Summary      string   `json:"summary"`
	Capabilities []string `json:"capabilities"`
	Skills       []string `json:"skills"`
	YearsExp     int      `json:"yearsExperience"`
}

// CandidateList is a paginated candidate listing
type CandidateList struct {
	Candidates []Candidate `json:"candidates"`
	TotalCount int         `json:"totalCount"`
}

// ProfileText renders the candidate as the text that gets embedded for
// semantic matching.
func (c *Candidate) ProfileText() string {
	var b strings.Builder
	b.WriteString(c.Headline)
	if c.Summary != "" {
		b.WriteString("\n")
		b.WriteString(c.Summary)
	}
	if len(c.Capabilities) > 0 {
		b.WriteString("\nCapabilities: ")
		b.WriteString(strings.Join(c.Capabilities, ", "))
	}
	if len(c.Skills) > 0 {
		b.WriteString("\nSkills: ")
		b.WriteString(strings.Join(c.Skills, ", "))
	}
	return b.String()
}
