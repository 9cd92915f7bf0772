package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/request"
	"github.com/benvon/smart-planner/internal/services/planner"
	"github.com/google/uuid"
)

type mockTaskRepo struct {
	createFunc         func(ctx context.Context, task *models.Task) error
	getByIDForUserFunc func(ctx context.Context, id, userID uuid.UUID) (*models.Task, error)
	listFunc           func(ctx context.Context, userID uuid.UUID, filter database.TaskFilter) ([]*models.Task, error)
	updateFunc         func(ctx context.Context, task *models.Task) error
	deleteFunc         func(ctx context.Context, id, userID uuid.UUID) error
}

func (m *mockTaskRepo) Create(ctx context.Context, task *models.Task) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, task)
	}
	return nil
}

func (m *mockTaskRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Task, error) {
	if m.getByIDForUserFunc != nil {
		return m.getByIDForUserFunc(ctx, id, userID)
	}
	return nil, database.ErrNotFound
}

func (m *mockTaskRepo) List(ctx context.Context, userID uuid.UUID, filter database.TaskFilter) ([]*models.Task, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, filter)
	}
	return []*models.Task{}, nil
}

func (m *mockTaskRepo) Update(ctx context.Context, task *models.Task) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, task)
	}
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, userID)
	}
	return nil
}

func (m *mockTaskRepo) ListRecurringByUser(context.Context, uuid.UUID, time.Time) ([]*models.Task, error) {
	return nil, nil
}

func (m *mockTaskRepo) ListUserIDsWithRecurringTasks(context.Context, time.Time) ([]uuid.UUID, error) {
	return nil, nil
}

var _ database.TaskRepositoryInterface = (*mockTaskRepo)(nil)

type mockPublisher struct {
	mu   sync.Mutex
	jobs []*queue.Job
	err  error
}

func (m *mockPublisher) Enqueue(_ context.Context, job *queue.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return m.err
}

type mockPlanner struct {
	materializeTodayFunc func(ctx context.Context, userID uuid.UUID) (*models.DailySchedule, error)
	listSchedulesFunc    func(ctx context.Context, userID uuid.UUID) ([]*models.DailySchedule, error)
	getScheduleFunc      func(ctx context.Context, userID, scheduleID uuid.UUID) (*models.DailySchedule, error)
	updateDailyTaskFunc  func(ctx context.Context, userID, id uuid.UUID, patch planner.DailyTaskPatch) (*models.DailyTask, error)
	ensureStreakFunc     func(ctx context.Context, userID uuid.UUID) (*models.ProgressStreak, error)
	statsFunc            func(ctx context.Context, userID uuid.UUID) (*planner.ProgressReport, error)
}

func (m *mockPlanner) MaterializeToday(ctx context.Context, userID uuid.UUID) (*models.DailySchedule, error) {
	if m.materializeTodayFunc != nil {
		return m.materializeTodayFunc(ctx, userID)
	}
	return &models.DailySchedule{ID: uuid.New(), UserID: userID}, nil
}

func (m *mockPlanner) ListSchedules(ctx context.Context, userID uuid.UUID) ([]*models.DailySchedule, error) {
	if m.listSchedulesFunc != nil {
		return m.listSchedulesFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockPlanner) GetSchedule(ctx context.Context, userID, scheduleID uuid.UUID) (*models.DailySchedule, error) {
	if m.getScheduleFunc != nil {
		return m.getScheduleFunc(ctx, userID, scheduleID)
	}
	return nil, database.ErrNotFound
}

func (m *mockPlanner) UpdateDailyTask(ctx context.Context, userID, id uuid.UUID, patch planner.DailyTaskPatch) (*models.DailyTask, error) {
	if m.updateDailyTaskFunc != nil {
		return m.updateDailyTaskFunc(ctx, userID, id, patch)
	}
	return nil, database.ErrNotFound
}

func (m *mockPlanner) EnsureStreak(ctx context.Context, userID uuid.UUID) (*models.ProgressStreak, error) {
	if m.ensureStreakFunc != nil {
		return m.ensureStreakFunc(ctx, userID)
	}
	return &models.ProgressStreak{UserID: userID}, nil
}

func (m *mockPlanner) Stats(ctx context.Context, userID uuid.UUID) (*planner.ProgressReport, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx, userID)
	}
	return &planner.ProgressReport{}, nil
}

var _ PlannerService = (*mockPlanner)(nil)

type mockReminderRepo struct {
	createFunc  func(ctx context.Context, reminder *models.Reminder) error
	listDueFunc func(ctx context.Context, now time.Time, userID *uuid.UUID) ([]*models.Reminder, error)
}

func (m *mockReminderRepo) Create(ctx context.Context, reminder *models.Reminder) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, reminder)
	}
	return nil
}

func (m *mockReminderRepo) ListDue(ctx context.Context, now time.Time, userID *uuid.UUID) ([]*models.Reminder, error) {
	if m.listDueFunc != nil {
		return m.listDueFunc(ctx, now, userID)
	}
	return nil, nil
}

func (m *mockReminderRepo) MarkSent(context.Context, uuid.UUID, time.Time) (bool, error) {
	return true, nil
}

var _ database.ReminderRepositoryInterface = (*mockReminderRepo)(nil)

type mockDailyTaskLookup struct {
	getByIDForUserFunc func(ctx context.Context, id, userID uuid.UUID) (*models.DailyTask, error)
}

func (m *mockDailyTaskLookup) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.DailyTask, error) {
	if m.getByIDForUserFunc != nil {
		return m.getByIDForUserFunc(ctx, id, userID)
	}
	return nil, database.ErrNotFound
}

type mockCategoryRepo struct {
	listFunc func(ctx context.Context) ([]models.Category, error)
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return models.DefaultCategories, nil
}

func (m *mockCategoryRepo) Seed(context.Context, []models.Category) (int, error) {
	return 0, nil
}

var _ database.CategoryRepositoryInterface = (*mockCategoryRepo)(nil)

// withUser attaches an authenticated user the way the auth middleware does
func withUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(request.WithUser(r.Context(), user))
}
