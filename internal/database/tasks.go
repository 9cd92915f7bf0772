package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/validation"
	"github.com/google/uuid"
)

const taskColumns = `id, user_id, category, title, description, date, start_time, end_time, priority,
		is_recurring, recurrence_pattern, is_completed, created_at, updated_at`

// priorityRank orders high before medium before low
const priorityRank = `CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END`

// taskOrderColumns whitelists the sortable fields
var taskOrderColumns = map[string]string{
	"date":       "date",
	"start_time": "start_time",
	"priority":   priorityRank,
	"created_at": "created_at",
}

// TaskFilter narrows a task listing. Nil fields are not applied.
type TaskFilter struct {
	Category    *models.CategoryName
	IsCompleted *bool
	Date        *time.Time
	DateFrom    *time.Time
	DateTo      *time.Time
	Priority    *models.Priority
	// Ordering holds field names, "-" prefixed for descending
	Ordering []string
}

// TaskRepository handles task database operations
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := validation.ValidateTimeRange(task.StartTime, task.EndTime); err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.UserID,
		task.Category,
		task.Title,
		task.Description,
		models.FormatDate(task.Date),
		task.StartTime,
		task.EndTime,
		task.Priority,
		task.IsRecurring,
		task.RecurrencePattern,
		task.IsCompleted,
		now,
		now,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	return wrapInsertErr("task", err)
}

// GetByIDForUser retrieves a task owned by userID
func (r *TaskRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, wrapGetErr("task", err)
	}
	return task, nil
}

// List retrieves a user's tasks with optional filters and ordering
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*models.Task, error) {
	query, args, err := buildTaskListQuery(userID, filter)
	if err != nil {
		return nil, err
	}
	return r.queryTasks(ctx, query, args...)
}

// ListRecurringByUser returns the user's recurring tasks anchored on or before the given date
func (r *TaskRepository) ListRecurringByUser(ctx context.Context, userID uuid.UUID, onOrBefore time.Time) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND is_recurring = true AND date <= $2
		ORDER BY start_time, created_at
	`
	return r.queryTasks(ctx, query, userID, models.FormatDate(onOrBefore))
}

// ListUserIDsWithRecurringTasks returns every user with at least one recurring task anchored on or before the date
func (r *TaskRepository) ListUserIDsWithRecurringTasks(ctx context.Context, onOrBefore time.Time) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT user_id FROM tasks WHERE is_recurring = true AND date <= $1`

	rows, err := r.db.QueryContext(ctx, query, models.FormatDate(onOrBefore))
	if err != nil {
		return nil, fmt.Errorf("failed to query users with recurring tasks: %w", err)
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", err)
	}
	return userIDs, nil
}

// Update updates an existing task owned by task.UserID
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	if err := validation.ValidateTimeRange(task.StartTime, task.EndTime); err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET category = $3, title = $4, description = $5, date = $6, start_time = $7, end_time = $8,
		    priority = $9, is_recurring = $10, recurrence_pattern = $11, is_completed = $12, updated_at = $13
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.UserID,
		task.Category,
		task.Title,
		task.Description,
		models.FormatDate(task.Date),
		task.StartTime,
		task.EndTime,
		task.Priority,
		task.IsRecurring,
		task.RecurrencePattern,
		task.IsCompleted,
		time.Now(),
	).Scan(&task.UpdatedAt)

	if err != nil {
		return wrapGetErr("task", err)
	}
	return nil
}

// Delete deletes a task owned by userID. Daily tasks materialized from it keep their snapshot.
func (r *TaskRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task %w", ErrNotFound)
	}
	return nil
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Category,
		&task.Title,
		&task.Description,
		&task.Date,
		&task.StartTime,
		&task.EndTime,
		&task.Priority,
		&task.IsRecurring,
		&task.RecurrencePattern,
		&task.IsCompleted,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Date = models.DateOf(task.Date)
	return task, nil
}

// buildTaskListQuery assembles the filtered listing query with positional arguments
func buildTaskListQuery(userID uuid.UUID, filter TaskFilter) (string, []any, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)
	args := []any{userID}

	add := func(clause string, value any) {
		args = append(args, value)
		fmt.Fprintf(&b, " AND "+clause, len(args))
	}

	if filter.Category != nil {
		add("category = $%d", string(*filter.Category))
	}
	if filter.IsCompleted != nil {
		add("is_completed = $%d", *filter.IsCompleted)
	}
	if filter.Date != nil {
		add("date = $%d", models.FormatDate(*filter.Date))
	}
	if filter.DateFrom != nil {
		add("date >= $%d", models.FormatDate(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		add("date <= $%d", models.FormatDate(*filter.DateTo))
	}
	if filter.Priority != nil {
		add("priority = $%d", string(*filter.Priority))
	}

	ordering := filter.Ordering
	if len(ordering) == 0 {
		ordering = []string{"start_time"}
	}

	terms := make([]string, 0, len(ordering)+1)
	for _, field := range ordering {
		direction := "ASC"
		name := field
		if strings.HasPrefix(field, "-") {
			direction = "DESC"
			name = strings.TrimPrefix(field, "-")
		}
		column, ok := taskOrderColumns[name]
		if !ok {
			return "", nil, &validation.ValidationError{Field: "ordering", Invariant: fmt.Sprintf("cannot order by %q", name)}
		}
		terms = append(terms, column+" "+direction)
	}
	// Stable tiebreak
	terms = append(terms, "id ASC")
	b.WriteString(" ORDER BY " + strings.Join(terms, ", "))

	return b.String(), args, nil
}
