package database

import (
	"context"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
)

// TaskRepositoryInterface defines the interface for task repository operations
// This interface enables better testability by allowing mock implementations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Task, error)
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	ListRecurringByUser(ctx context.Context, userID uuid.UUID, onOrBefore time.Time) ([]*models.Task, error)
	ListUserIDsWithRecurringTasks(ctx context.Context, onOrBefore time.Time) ([]uuid.UUID, error)
}

// ScheduleRepositoryInterface defines the interface for daily schedule repository operations
type ScheduleRepositoryInterface interface {
	Create(ctx context.Context, schedule *models.DailySchedule) error
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailySchedule, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.DailySchedule, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.DailySchedule, error)
	ListProgressBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.ScheduleProgress, error)
}

// DailyTaskRepositoryInterface defines the interface for daily task repository operations
type DailyTaskRepositoryInterface interface {
	Create(ctx context.Context, dt *models.DailyTask) error
	GetByScheduleAndTask(ctx context.Context, scheduleID, originalTaskID uuid.UUID) (*models.DailyTask, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.DailyTask, error)
	ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*models.DailyTask, error)
	Update(ctx context.Context, dt *models.DailyTask) error
}

// StreakRepositoryInterface defines the interface for progress streak repository operations
type StreakRepositoryInterface interface {
	Create(ctx context.Context, streak *models.ProgressStreak) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.ProgressStreak, error)
	Update(ctx context.Context, streak *models.ProgressStreak) error
}

// ReminderRepositoryInterface defines the interface for reminder repository operations
type ReminderRepositoryInterface interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	ListDue(ctx context.Context, now time.Time, userID *uuid.UUID) ([]*models.Reminder, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) (bool, error)
}

// CategoryRepositoryInterface defines the interface for category repository operations
type CategoryRepositoryInterface interface {
	List(ctx context.Context) ([]models.Category, error)
	Seed(ctx context.Context, categories []models.Category) (int, error)
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetOrCreateByProviderID(ctx context.Context, providerID, email string, name *string) (*models.User, error)
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface      = (*TaskRepository)(nil)
	_ ScheduleRepositoryInterface  = (*ScheduleRepository)(nil)
	_ DailyTaskRepositoryInterface = (*DailyTaskRepository)(nil)
	_ StreakRepositoryInterface    = (*StreakRepository)(nil)
	_ ReminderRepositoryInterface  = (*ReminderRepository)(nil)
	_ CategoryRepositoryInterface  = (*CategoryRepository)(nil)
	_ UserRepositoryInterface      = (*UserRepository)(nil)
)

// Repositories bundles every repository over one connection pool
type Repositories struct {
	Users      *UserRepository
	Tasks      *TaskRepository
	Schedules  *ScheduleRepository
	DailyTasks *DailyTaskRepository
	Streaks    *StreakRepository
	Reminders  *ReminderRepository
	Categories *CategoryRepository
}

// NewRepositories creates all repositories backed by db
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		Tasks:      NewTaskRepository(db),
		Schedules:  NewScheduleRepository(db),
		DailyTasks: NewDailyTaskRepository(db),
		Streaks:    NewStreakRepository(db),
		Reminders:  NewReminderRepository(db),
		Categories: NewCategoryRepository(db),
	}
}
