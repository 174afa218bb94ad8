package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is an open position the HR copilot scores candidates against
type Role struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Capabilities []string   `json:"capabilities"`
	Skills       []string   `json:"skills"`
	MinYearsExp  int        `json:"minYearsExperience"`
	Status       RoleStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// RoleStatus is the lifecycle state of a role
type RoleStatus string

const (
	RoleStatusOpen   RoleStatus = "open"
	RoleStatusClosed RoleStatus = "closed"
)

// RoleInput holds the fields accepted when creating or updating a role
type RoleInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
	Skills       []string `json:"skills"`
	MinYearsExp  int      `json:"minYearsExperience"`
}

// RoleList is a paginated role listing
type RoleList struct {
	Roles      []Role `json:"roles"`
	TotalCount int    `json:"totalCount"`
}

// ProfileText renders the role as the text that gets embedded for semantic
// matching.
func (r *Role) ProfileText() string {
	var b strings.Builder
	b.WriteString(r.Title)
	if r.Description != "" {
		b.WriteString("\n")
		b.WriteString(r.Description)
	}
	if len(r.Capabilities) > 0 {
		b.WriteString("\nRequired capabilities: ")
		b.WriteString(strings.Join(r.Capabilities, ", "))
	}
	if len(r.Skills) > 0 {
		b.WriteString("\nRequired skills: ")
		b.WriteString(strings.Join(r.Skills, ", "))
	}
	return b.String()
}
