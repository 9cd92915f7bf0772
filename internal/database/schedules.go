package database

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
)

const scheduleColumns = `id, user_id, date, created_at, updated_at`

// ScheduleRepository handles daily schedule database operations
type ScheduleRepository struct {
	db *DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create inserts a schedule. Returns ErrConflict when (user_id, date) already exists.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.DailySchedule) error {
	query := `
		INSERT INTO daily_schedules (` + scheduleColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT daily_schedules_user_date_key DO NOTHING
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		schedule.ID,
		schedule.UserID,
		models.FormatDate(schedule.Date),
		now,
		now,
	).Scan(&schedule.CreatedAt, &schedule.UpdatedAt)

	return wrapInsertErr("daily schedule", err)
}

// GetByUserAndDate retrieves the schedule for one user and date, without its daily tasks
func (r *ScheduleRepository) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailySchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM daily_schedules WHERE user_id = $1 AND date = $2`

	schedule, err := scanSchedule(r.db.QueryRowContext(ctx, query, userID, models.FormatDate(date)))
	if err != nil {
		return nil, wrapGetErr("daily schedule", err)
	}
	return schedule, nil
}

// GetByIDForUser retrieves a schedule owned by userID, without its daily tasks
func (r *ScheduleRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.DailySchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM daily_schedules WHERE id = $1 AND user_id = $2`

	schedule, err := scanSchedule(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, wrapGetErr("daily schedule", err)
	}
	return schedule, nil
}

// ListByUser returns the user's schedules newest first, without their daily tasks
func (r *ScheduleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.DailySchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM daily_schedules WHERE user_id = $1 ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*models.DailySchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily schedule: %w", err)
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily schedules: %w", err)
	}
	return schedules, nil
}

// ListProgressBetween tallies completion for every schedule of the user dated within [from, to]
func (r *ScheduleRepository) ListProgressBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.ScheduleProgress, error) {
	query := `
		SELECT s.id, s.date,
		       COUNT(dt.id) FILTER (WHERE dt.is_completed),
		       COUNT(dt.id)
		FROM daily_schedules s
		LEFT JOIN daily_tasks dt ON dt.schedule_id = s.id
		WHERE s.user_id = $1 AND s.date >= $2 AND s.date <= $3
		GROUP BY s.id, s.date
		ORDER BY s.date
	`

	rows, err := r.db.QueryContext(ctx, query, userID, models.FormatDate(from), models.FormatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule progress: %w", err)
	}
	defer rows.Close()

	var progress []models.ScheduleProgress
	for rows.Next() {
		var p models.ScheduleProgress
		if err := rows.Scan(&p.ScheduleID, &p.Date, &p.Completed, &p.Total); err != nil {
			return nil, fmt.Errorf("failed to scan schedule progress: %w", err)
		}
		p.Date = models.DateOf(p.Date)
		progress = append(progress, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule progress: %w", err)
	}
	return progress, nil
}

func scanSchedule(row rowScanner) (*models.DailySchedule, error) {
	schedule := &models.DailySchedule{}
	err := row.Scan(
		&schedule.ID,
		&schedule.UserID,
		&schedule.Date,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	schedule.Date = models.DateOf(schedule.Date)
	return schedule, nil
}
