package database

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
)

const reminderColumns = `id, user_id, daily_task_id, reminder_type, reminder_time, is_sent, sent_at, created_at`

// ReminderRepository handles reminder database operations
type ReminderRepository struct {
	db *DB
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Create inserts a reminder
func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	query := `
		INSERT INTO reminders (` + reminderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		reminder.ID,
		reminder.UserID,
		reminder.DailyTaskID,
		reminder.ReminderType,
		reminder.ReminderTime,
		reminder.IsSent,
		reminder.SentAt,
		time.Now(),
	).Scan(&reminder.CreatedAt)

	return wrapInsertErr("reminder", err)
}

// ListDue returns unsent reminders whose time has come. A nil userID lists across all users.
func (r *ReminderRepository) ListDue(ctx context.Context, now time.Time, userID *uuid.UUID) ([]*models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE is_sent = false AND reminder_time <= $1`
	args := []any{now}
	if userID != nil {
		query += ` AND user_id = $2`
		args = append(args, *userID)
	}
	query += ` ORDER BY reminder_time`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer rows.Close()

	reminders := []*models.Reminder{}
	for rows.Next() {
		reminder := &models.Reminder{}
		if err := rows.Scan(
			&reminder.ID,
			&reminder.UserID,
			&reminder.DailyTaskID,
			&reminder.ReminderType,
			&reminder.ReminderTime,
			&reminder.IsSent,
			&reminder.SentAt,
			&reminder.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}
	return reminders, nil
}

// MarkSent flags a reminder as sent. Returns false when another sweep got there first.
func (r *ReminderRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET is_sent = true, sent_at = $2 WHERE id = $1 AND is_sent = false`,
		id, sentAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder sent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}
