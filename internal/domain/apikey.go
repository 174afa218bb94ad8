package domain

import (
	"time"

	"github.com/google/uuid"
)

// APIKey authenticates public API callers. The secret is stored as a
// bcrypt hash; the public prefix is used for lookup.
type APIKey struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	SecretHash string     `json:"-"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
