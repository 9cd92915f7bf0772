package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/validation"
	"github.com/google/uuid"
)

func ptr[T any](v T) *T { return &v }

func TestApply(t *testing.T) {
	t.Parallel()

	earlier := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	base := func() *models.DailyTask {
		return &models.DailyTask{
			ID:        uuid.New(),
			Title:     "write report",
			Category:  models.CategoryWork,
			StartTime: models.MustTimeOfDay(9, 0, 0),
			EndTime:   models.MustTimeOfDay(11, 0, 0),
			Priority:  models.PriorityHigh,
		}
	}

	tests := []struct {
		name            string
		current         func() *models.DailyTask
		patch           DailyTaskPatch
		expectErr       bool
		expectCompleted *time.Time
	}{
		{
			name:            "first completion stamps now",
			current:         base,
			patch:           DailyTaskPatch{IsCompleted: ptr(true)},
			expectCompleted: &now,
		},
		{
			name: "recompletion keeps earlier stamp",
			current: func() *models.DailyTask {
				dt := base()
				dt.CompletedAt = &earlier
				return dt
			},
			patch:           DailyTaskPatch{IsCompleted: ptr(true)},
			expectCompleted: &earlier,
		},
		{
			name: "uncompleting keeps stamp",
			current: func() *models.DailyTask {
				dt := base()
				dt.IsCompleted = true
				dt.CompletedAt = &earlier
				return dt
			},
			patch:           DailyTaskPatch{IsCompleted: ptr(false)},
			expectCompleted: &earlier,
		},
		{
			name:    "title change leaves completion unset",
			current: base,
			patch:   DailyTaskPatch{Title: ptr("write summary")},
		},
		{
			name:      "end before start rejected",
			current:   base,
			patch:     DailyTaskPatch{EndTime: ptr(models.MustTimeOfDay(8, 0, 0))},
			expectErr: true,
		},
		{
			name:      "end equal start rejected",
			current:   base,
			patch:     DailyTaskPatch{StartTime: ptr(models.MustTimeOfDay(11, 0, 0)), IsCompleted: ptr(true)},
			expectErr: true,
		},
		{
			name:      "unknown category rejected",
			current:   base,
			patch:     DailyTaskPatch{Category: ptr(models.CategoryName("chores"))},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			current := tt.current()
			snapshot := *current

			next, err := Apply(current, tt.patch, now)
			if tt.expectErr {
				if !validation.IsValidationError(err) {
					t.Fatalf("Expected validation error, got %v", err)
				}
				if current.Title != snapshot.Title || current.StartTime != snapshot.StartTime || current.EndTime != snapshot.EndTime {
					t.Error("Expected rejected patch to leave the current task untouched")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			switch {
			case tt.expectCompleted == nil && next.CompletedAt != nil:
				t.Errorf("Expected CompletedAt unset, got %v", next.CompletedAt)
			case tt.expectCompleted != nil && (next.CompletedAt == nil || !next.CompletedAt.Equal(*tt.expectCompleted)):
				t.Errorf("Expected CompletedAt %v, got %v", tt.expectCompleted, next.CompletedAt)
			}
			if current.CompletedAt != snapshot.CompletedAt {
				t.Error("Expected Apply not to mutate its input")
			}
		})
	}
}

func TestUpdateDailyTask_InvalidRangeIsNotPersisted(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	userID := uuid.New()
	day := ymd(2024, time.September, 3)
	store.addTask(recurringTask(userID, "call mom", ymd(2024, time.September, 1), models.RecurrenceDaily, 19))

	svc := store.service(fixedClock(day))
	ctx := context.Background()
	schedule, err := svc.Materialize(ctx, userID, day)
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	dtID := schedule.DailyTasks[0].ID

	_, err = svc.UpdateDailyTask(ctx, userID, dtID, DailyTaskPatch{
		EndTime:     ptr(models.MustTimeOfDay(18, 0, 0)),
		IsCompleted: ptr(true),
	})
	var vErr *validation.ValidationError
	if !errors.As(err, &vErr) || vErr.Invariant != validation.InvariantEndAfterStart {
		t.Fatalf("Expected end-after-start validation error, got %v", err)
	}
	if store.updates != 0 {
		t.Errorf("Expected no writes, got %d", store.updates)
	}

	stored, err := memDailyTasks{store}.GetByIDForUser(ctx, dtID, userID)
	if err != nil {
		t.Fatalf("Failed to reload daily task: %v", err)
	}
	if stored.IsCompleted || stored.EndTime != models.MustTimeOfDay(20, 0, 0) {
		t.Error("Expected stored daily task to be unchanged")
	}
	if store.streakCount(userID) != 0 {
		t.Error("Expected no streak activity for a rejected update")
	}
}

func TestUpdateDailyTask_CompletionUpdatesStreak(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	userID := uuid.New()
	day := ymd(2024, time.October, 7)
	store.addTask(recurringTask(userID, "run", ymd(2024, time.October, 1), models.RecurrenceDaily, 6))

	svc := store.service(fixedClock(day.Add(7 * time.Hour)))
	ctx := context.Background()
	schedule, err := svc.Materialize(ctx, userID, day)
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	updated, err := svc.UpdateDailyTask(ctx, userID, schedule.DailyTasks[0].ID, DailyTaskPatch{IsCompleted: ptr(true)})
	if err != nil {
		t.Fatalf("UpdateDailyTask() error = %v", err)
	}
	if updated.CompletedAt == nil || !updated.CompletedAt.Equal(day.Add(7*time.Hour)) {
		t.Errorf("Expected CompletedAt stamped from the clock, got %v", updated.CompletedAt)
	}

	streak, err := memStreaks{store}.GetByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("Expected streak to exist: %v", err)
	}
	if streak.CurrentStreak != 1 || streak.LongestStreak != 1 {
		t.Errorf("Expected streak 1/1, got %d/%d", streak.CurrentStreak, streak.LongestStreak)
	}
	if streak.LastUpdated == nil || !streak.LastUpdated.Equal(day) {
		t.Errorf("Expected LastUpdated %s, got %v", models.FormatDate(day), streak.LastUpdated)
	}
}

func TestUpdateDailyTask_OtherUsersTaskIsNotFound(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	owner := uuid.New()
	day := ymd(2024, time.January, 5)
	store.addTask(recurringTask(owner, "plan week", ymd(2024, time.January, 5), models.RecurrenceWeekly, 8))

	svc := store.service(fixedClock(day))
	schedule, err := svc.Materialize(context.Background(), owner, day)
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	_, err = svc.UpdateDailyTask(context.Background(), uuid.New(), schedule.DailyTasks[0].ID, DailyTaskPatch{IsCompleted: ptr(true)})
	if !errors.Is(err, database.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
