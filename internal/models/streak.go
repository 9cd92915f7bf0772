package models

import (
	"time"

	"github.com/google/uuid"
)

// ProgressStreak counts consecutive qualifying days for a user. LastUpdated is the calendar date of the
// most recent evaluation and is nil until the first one.
type ProgressStreak struct {
	UserID        uuid.UUID  `json:"user_id"`
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
	LastUpdated   *time.Time `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
