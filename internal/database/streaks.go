package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
)

// StreakRepository handles progress streak database operations
type StreakRepository struct {
	db *DB
}

// NewStreakRepository creates a new streak repository
func NewStreakRepository(db *DB) *StreakRepository {
	return &StreakRepository{db: db}
}

// Create inserts a streak. Returns ErrConflict when the user already has one.
func (r *StreakRepository) Create(ctx context.Context, streak *models.ProgressStreak) error {
	query := `
		INSERT INTO progress_streaks (user_id, current_streak, longest_streak, last_updated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		streak.UserID,
		streak.CurrentStreak,
		streak.LongestStreak,
		nullDate(streak.LastUpdated),
		now,
		now,
	).Scan(&streak.CreatedAt, &streak.UpdatedAt)

	return wrapInsertErr("progress streak", err)
}

// GetByUserID retrieves a user's streak
func (r *StreakRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ProgressStreak, error) {
	query := `
		SELECT user_id, current_streak, longest_streak, last_updated, created_at, updated_at
		FROM progress_streaks
		WHERE user_id = $1
	`

	streak := &models.ProgressStreak{}
	var lastUpdated sql.NullTime
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&streak.UserID,
		&streak.CurrentStreak,
		&streak.LongestStreak,
		&lastUpdated,
		&streak.CreatedAt,
		&streak.UpdatedAt,
	)
	if err != nil {
		return nil, wrapGetErr("progress streak", err)
	}

	if lastUpdated.Valid {
		d := models.DateOf(lastUpdated.Time)
		streak.LastUpdated = &d
	}
	return streak, nil
}

// Update persists the streak counters
func (r *StreakRepository) Update(ctx context.Context, streak *models.ProgressStreak) error {
	query := `
		UPDATE progress_streaks
		SET current_streak = $2, longest_streak = $3, last_updated = $4, updated_at = $5
		WHERE user_id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		streak.UserID,
		streak.CurrentStreak,
		streak.LongestStreak,
		nullDate(streak.LastUpdated),
		time.Now(),
	).Scan(&streak.UpdatedAt)

	if err != nil {
		return wrapGetErr("progress streak", err)
	}
	return nil
}

func nullDate(d *time.Time) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: models.FormatDate(*d), Valid: true}
}
