package database

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/validation"
	"github.com/google/uuid"
)

const dailyTaskSelect = `
	SELECT dt.id, dt.schedule_id, dt.original_task_id, dt.title, dt.category, COALESCE(c.color, ''),
	       dt.start_time, dt.end_time, dt.priority, dt.is_completed, dt.completed_at, dt.created_at, dt.updated_at
	FROM daily_tasks dt
	LEFT JOIN categories c ON c.name = dt.category
`

// DailyTaskRepository handles daily task database operations
type DailyTaskRepository struct {
	db *DB
}

// NewDailyTaskRepository creates a new daily task repository
func NewDailyTaskRepository(db *DB) *DailyTaskRepository {
	return &DailyTaskRepository{db: db}
}

// Create inserts a daily task. Returns ErrConflict when the schedule already holds an
// occurrence of the same original task.
func (r *DailyTaskRepository) Create(ctx context.Context, dt *models.DailyTask) error {
	if err := validation.ValidateTimeRange(dt.StartTime, dt.EndTime); err != nil {
		return err
	}

	query := `
		INSERT INTO daily_tasks (id, schedule_id, original_task_id, title, category, start_time, end_time,
		                         priority, is_completed, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (schedule_id, original_task_id) WHERE original_task_id IS NOT NULL DO NOTHING
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		dt.ID,
		dt.ScheduleID,
		dt.OriginalTaskID,
		dt.Title,
		dt.Category,
		dt.StartTime,
		dt.EndTime,
		dt.Priority,
		dt.IsCompleted,
		dt.CompletedAt,
		now,
		now,
	).Scan(&dt.CreatedAt, &dt.UpdatedAt)

	return wrapInsertErr("daily task", err)
}

// GetByScheduleAndTask retrieves the occurrence of originalTaskID on a schedule
func (r *DailyTaskRepository) GetByScheduleAndTask(ctx context.Context, scheduleID, originalTaskID uuid.UUID) (*models.DailyTask, error) {
	query := dailyTaskSelect + `WHERE dt.schedule_id = $1 AND dt.original_task_id = $2`

	dt, err := scanDailyTask(r.db.QueryRowContext(ctx, query, scheduleID, originalTaskID))
	if err != nil {
		return nil, wrapGetErr("daily task", err)
	}
	return dt, nil
}

// GetByIDForUser retrieves a daily task whose schedule is owned by userID
func (r *DailyTaskRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.DailyTask, error) {
	query := dailyTaskSelect + `
		JOIN daily_schedules s ON s.id = dt.schedule_id
		WHERE dt.id = $1 AND s.user_id = $2
	`

	dt, err := scanDailyTask(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, wrapGetErr("daily task", err)
	}
	return dt, nil
}

// ListBySchedule returns a schedule's daily tasks ordered by start time
func (r *DailyTaskRepository) ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*models.DailyTask, error) {
	query := dailyTaskSelect + `WHERE dt.schedule_id = $1 ORDER BY dt.start_time, dt.created_at, dt.id`

	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily tasks: %w", err)
	}
	defer rows.Close()

	dailyTasks := []*models.DailyTask{}
	for rows.Next() {
		dt, err := scanDailyTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily task: %w", err)
		}
		dailyTasks = append(dailyTasks, dt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily tasks: %w", err)
	}
	return dailyTasks, nil
}

// Update persists every mutable field of a daily task. Concurrent updates are last-writer-wins.
func (r *DailyTaskRepository) Update(ctx context.Context, dt *models.DailyTask) error {
	if err := validation.ValidateTimeRange(dt.StartTime, dt.EndTime); err != nil {
		return err
	}

	query := `
		UPDATE daily_tasks
		SET title = $2, category = $3, start_time = $4, end_time = $5, priority = $6,
		    is_completed = $7, completed_at = $8, updated_at = $9
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		dt.ID,
		dt.Title,
		dt.Category,
		dt.StartTime,
		dt.EndTime,
		dt.Priority,
		dt.IsCompleted,
		dt.CompletedAt,
		time.Now(),
	).Scan(&dt.UpdatedAt)

	if err != nil {
		return wrapGetErr("daily task", err)
	}
	return nil
}

func scanDailyTask(row rowScanner) (*models.DailyTask, error) {
	dt := &models.DailyTask{}
	err := row.Scan(
		&dt.ID,
		&dt.ScheduleID,
		&dt.OriginalTaskID,
		&dt.Title,
		&dt.Category,
		&dt.CategoryColor,
		&dt.StartTime,
		&dt.EndTime,
		&dt.Priority,
		&dt.IsCompleted,
		&dt.CompletedAt,
		&dt.CreatedAt,
		&dt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return dt, nil
}
