package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system. ProviderID is the subject of the bearer token that identified them.
type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	ProviderID string    `json:"-"`
	Name       *string   `json:"name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
