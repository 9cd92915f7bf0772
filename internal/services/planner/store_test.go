package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/validation"
	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for Postgres that enforces the same uniqueness keys.
// The lose*Race flags make the next lookup miss while a competing writer inserts the row,
// so the following create hits the constraint.
type memStore struct {
	mu sync.Mutex

	tasks      map[uuid.UUID]*models.Task
	schedules  map[uuid.UUID]*models.DailySchedule
	dailyTasks map[uuid.UUID]*models.DailyTask
	streaks    map[uuid.UUID]*models.ProgressStreak

	loseScheduleRace  bool
	loseDailyTaskRace bool
	loseStreakRace    bool

	// failDailyTaskCreate fails the n-th daily task insert (1-based), 0 never
	failDailyTaskCreate int
	dailyTaskCreates    int

	rowsCreated int
	conflicts   int
	updates     int
}

func newMemStore() *memStore {
	return &memStore{
		tasks:      make(map[uuid.UUID]*models.Task),
		schedules:  make(map[uuid.UUID]*models.DailySchedule),
		dailyTasks: make(map[uuid.UUID]*models.DailyTask),
		streaks:    make(map[uuid.UUID]*models.ProgressStreak),
	}
}

func (m *memStore) service(clock Clocker) *Service {
	return NewService(memTasks{m}, memSchedules{m}, memDailyTasks{m}, memStreaks{m}, WithClock(clock))
}

func (m *memStore) addTask(task *models.Task) *models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	c := *task
	m.tasks[task.ID] = &c
	return task
}

func (m *memStore) countSchedules(userID uuid.UUID, date time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.schedules {
		if s.UserID == userID && s.Date.Equal(date) {
			n++
		}
	}
	return n
}

func (m *memStore) countDailyTasks(scheduleID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, dt := range m.dailyTasks {
		if dt.ScheduleID == scheduleID {
			n++
		}
	}
	return n
}

func (m *memStore) streakCount(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.streaks[userID]; ok {
		return 1
	}
	return 0
}

type memTasks struct{ m *memStore }

func (r memTasks) Create(_ context.Context, task *models.Task) error {
	if err := validation.ValidateTimeRange(task.StartTime, task.EndTime); err != nil {
		return err
	}
	r.m.addTask(task)
	return nil
}

func (r memTasks) GetByIDForUser(_ context.Context, id, userID uuid.UUID) (*models.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, fmt.Errorf("task %w", database.ErrNotFound)
	}
	c := *t
	return &c, nil
}

func (r memTasks) List(_ context.Context, userID uuid.UUID, _ database.TaskFilter) ([]*models.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Task
	for _, t := range r.m.tasks {
		if t.UserID == userID {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memTasks) Update(_ context.Context, task *models.Task) error {
	if err := validation.ValidateTimeRange(task.StartTime, task.EndTime); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.tasks[task.ID]; !ok {
		return fmt.Errorf("task %w", database.ErrNotFound)
	}
	c := *task
	r.m.tasks[task.ID] = &c
	return nil
}

func (r memTasks) Delete(_ context.Context, id, userID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tasks[id]
	if !ok || t.UserID != userID {
		return fmt.Errorf("task %w", database.ErrNotFound)
	}
	delete(r.m.tasks, id)
	for _, dt := range r.m.dailyTasks {
		if dt.OriginalTaskID != nil && *dt.OriginalTaskID == id {
			dt.OriginalTaskID = nil
		}
	}
	return nil
}

func (r memTasks) ListRecurringByUser(_ context.Context, userID uuid.UUID, onOrBefore time.Time) ([]*models.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Task
	for _, t := range r.m.tasks {
		if t.UserID == userID && t.IsRecurring && !t.Date.After(onOrBefore) {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r memTasks) ListUserIDsWithRecurringTasks(_ context.Context, onOrBefore time.Time) ([]uuid.UUID, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, t := range r.m.tasks {
		if t.IsRecurring && !t.Date.After(onOrBefore) && !seen[t.UserID] {
			seen[t.UserID] = true
			out = append(out, t.UserID)
		}
	}
	return out, nil
}

type memSchedules struct{ m *memStore }

func (r memSchedules) Create(_ context.Context, schedule *models.DailySchedule) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.schedules {
		if s.UserID == schedule.UserID && s.Date.Equal(schedule.Date) {
			r.m.conflicts++
			return fmt.Errorf("failed to create daily schedule: %w", database.ErrConflict)
		}
	}
	c := *schedule
	c.DailyTasks = nil
	r.m.schedules[schedule.ID] = &c
	r.m.rowsCreated++
	return nil
}

func (r memSchedules) GetByUserAndDate(_ context.Context, userID uuid.UUID, date time.Time) (*models.DailySchedule, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.loseScheduleRace {
		r.m.loseScheduleRace = false
		winner := &models.DailySchedule{ID: uuid.New(), UserID: userID, Date: date}
		r.m.schedules[winner.ID] = winner
		r.m.rowsCreated++
		return nil, fmt.Errorf("daily schedule %w", database.ErrNotFound)
	}
	for _, s := range r.m.schedules {
		if s.UserID == userID && s.Date.Equal(date) {
			c := *s
			return &c, nil
		}
	}
	return nil, fmt.Errorf("daily schedule %w", database.ErrNotFound)
}

func (r memSchedules) GetByIDForUser(_ context.Context, id, userID uuid.UUID) (*models.DailySchedule, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.schedules[id]
	if !ok || s.UserID != userID {
		return nil, fmt.Errorf("daily schedule %w", database.ErrNotFound)
	}
	c := *s
	return &c, nil
}

func (r memSchedules) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.DailySchedule, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.DailySchedule
	for _, s := range r.m.schedules {
		if s.UserID == userID {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r memSchedules) ListProgressBetween(_ context.Context, userID uuid.UUID, from, to time.Time) ([]models.ScheduleProgress, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.ScheduleProgress
	for _, s := range r.m.schedules {
		if s.UserID != userID || s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		p := models.ScheduleProgress{ScheduleID: s.ID, Date: s.Date}
		for _, dt := range r.m.dailyTasks {
			if dt.ScheduleID != s.ID {
				continue
			}
			p.Total++
			if dt.IsCompleted {
				p.Completed++
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type memDailyTasks struct{ m *memStore }

var errInjected = errors.New("injected storage failure")

func (r memDailyTasks) Create(_ context.Context, dt *models.DailyTask) error {
	if err := validation.ValidateTimeRange(dt.StartTime, dt.EndTime); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.dailyTaskCreates++
	if r.m.failDailyTaskCreate != 0 && r.m.dailyTaskCreates == r.m.failDailyTaskCreate {
		return fmt.Errorf("failed to create daily task: %w", errInjected)
	}
	if dt.OriginalTaskID != nil {
		for _, existing := range r.m.dailyTasks {
			if existing.ScheduleID == dt.ScheduleID && existing.OriginalTaskID != nil && *existing.OriginalTaskID == *dt.OriginalTaskID {
				r.m.conflicts++
				return fmt.Errorf("failed to create daily task: %w", database.ErrConflict)
			}
		}
	}
	r.m.dailyTasks[dt.ID] = dt.Clone()
	r.m.rowsCreated++
	return nil
}

func (r memDailyTasks) GetByScheduleAndTask(_ context.Context, scheduleID, originalTaskID uuid.UUID) (*models.DailyTask, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.loseDailyTaskRace {
		r.m.loseDailyTaskRace = false
		if t, ok := r.m.tasks[originalTaskID]; ok {
			id := originalTaskID
			winner := &models.DailyTask{
				ID: uuid.New(), ScheduleID: scheduleID, OriginalTaskID: &id, Title: t.Title,
				Category: t.Category, StartTime: t.StartTime, EndTime: t.EndTime, Priority: t.Priority,
			}
			r.m.dailyTasks[winner.ID] = winner
			r.m.rowsCreated++
		}
		return nil, fmt.Errorf("daily task %w", database.ErrNotFound)
	}
	for _, dt := range r.m.dailyTasks {
		if dt.ScheduleID == scheduleID && dt.OriginalTaskID != nil && *dt.OriginalTaskID == originalTaskID {
			return dt.Clone(), nil
		}
	}
	return nil, fmt.Errorf("daily task %w", database.ErrNotFound)
}

func (r memDailyTasks) GetByIDForUser(_ context.Context, id, userID uuid.UUID) (*models.DailyTask, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	dt, ok := r.m.dailyTasks[id]
	if !ok {
		return nil, fmt.Errorf("daily task %w", database.ErrNotFound)
	}
	s, ok := r.m.schedules[dt.ScheduleID]
	if !ok || s.UserID != userID {
		return nil, fmt.Errorf("daily task %w", database.ErrNotFound)
	}
	return dt.Clone(), nil
}

func (r memDailyTasks) ListBySchedule(_ context.Context, scheduleID uuid.UUID) ([]*models.DailyTask, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []*models.DailyTask{}
	for _, dt := range r.m.dailyTasks {
		if dt.ScheduleID == scheduleID {
			out = append(out, dt.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r memDailyTasks) Update(_ context.Context, dt *models.DailyTask) error {
	if err := validation.ValidateTimeRange(dt.StartTime, dt.EndTime); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.dailyTasks[dt.ID]; !ok {
		return fmt.Errorf("daily task %w", database.ErrNotFound)
	}
	r.m.dailyTasks[dt.ID] = dt.Clone()
	r.m.updates++
	return nil
}

type memStreaks struct{ m *memStore }

func (r memStreaks) Create(_ context.Context, streak *models.ProgressStreak) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.streaks[streak.UserID]; ok {
		r.m.conflicts++
		return fmt.Errorf("failed to create progress streak: %w", database.ErrConflict)
	}
	c := *streak
	r.m.streaks[streak.UserID] = &c
	r.m.rowsCreated++
	return nil
}

func (r memStreaks) GetByUserID(_ context.Context, userID uuid.UUID) (*models.ProgressStreak, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.loseStreakRace {
		r.m.loseStreakRace = false
		r.m.streaks[userID] = &models.ProgressStreak{UserID: userID}
		r.m.rowsCreated++
		return nil, fmt.Errorf("progress streak %w", database.ErrNotFound)
	}
	s, ok := r.m.streaks[userID]
	if !ok {
		return nil, fmt.Errorf("progress streak %w", database.ErrNotFound)
	}
	c := *s
	return &c, nil
}

func (r memStreaks) Update(_ context.Context, streak *models.ProgressStreak) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.streaks[streak.UserID]; !ok {
		return fmt.Errorf("progress streak %w", database.ErrNotFound)
	}
	c := *streak
	r.m.streaks[streak.UserID] = &c
	r.m.updates++
	return nil
}

func fixedClock(t time.Time) Clocker {
	return ClockFunc(func() time.Time { return t })
}

func ymd(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func recurringTask(userID uuid.UUID, title string, anchor time.Time, pattern models.RecurrencePattern, startHour int) *models.Task {
	return &models.Task{
		ID:                uuid.New(),
		UserID:            userID,
		Category:          models.CategoryWork,
		Title:             title,
		Date:              anchor,
		StartTime:         models.MustTimeOfDay(startHour, 0, 0),
		EndTime:           models.MustTimeOfDay(startHour+1, 0, 0),
		Priority:          models.PriorityMedium,
		IsRecurring:       true,
		RecurrencePattern: pattern,
	}
}
