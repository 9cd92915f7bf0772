package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DailyTaskPatch carries the fields a user may change on a daily task. Nil fields are left alone.
type DailyTaskPatch struct {
	Title       *string
	Category    *models.CategoryName
	StartTime   *models.TimeOfDay
	EndTime     *models.TimeOfDay
	Priority    *models.Priority
	IsCompleted *bool
}

// Apply returns a patched copy of current. The copy is rejected when end_time <= start_time.
// CompletedAt is stamped with now the first time the task is saved completed and is never cleared.
func Apply(current *models.DailyTask, patch DailyTaskPatch, now time.Time) (*models.DailyTask, error) {
	next := current.Clone()

	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Category != nil {
		if !patch.Category.IsValid() {
			return nil, &validation.ValidationError{Field: "category", Invariant: "unknown category"}
		}
		next.Category = *patch.Category
	}
	if patch.StartTime != nil {
		next.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		next.EndTime = *patch.EndTime
	}
	if patch.Priority != nil {
		if err := validation.ValidatePriority(string(*patch.Priority)); err != nil {
			return nil, &validation.ValidationError{Field: "priority", Invariant: err.Error()}
		}
		next.Priority = *patch.Priority
	}
	if patch.IsCompleted != nil {
		next.IsCompleted = *patch.IsCompleted
	}

	if err := validation.ValidateTimeRange(next.StartTime, next.EndTime); err != nil {
		return nil, err
	}

	if next.IsCompleted && next.CompletedAt == nil {
		stamp := now
		next.CompletedAt = &stamp
	}
	return next, nil
}

// UpdateDailyTask patches one of the user's daily tasks. When the saved task is completed the
// user's streak is re-evaluated against the task's schedule.
func (s *Service) UpdateDailyTask(ctx context.Context, userID, dailyTaskID uuid.UUID, patch DailyTaskPatch) (*models.DailyTask, error) {
	ctx, span := s.tracer.Start(ctx, "planner.UpdateDailyTask")
	defer span.End()

	current, err := s.dailyTasks.GetByIDForUser(ctx, dailyTaskID, userID)
	if err != nil {
		return nil, err
	}

	next, err := Apply(current, patch, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.dailyTasks.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to update daily task: %w", err)
	}

	if next.IsCompleted {
		schedule, err := s.schedules.GetByIDForUser(ctx, next.ScheduleID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load schedule for streak: %w", err)
		}
		if err := s.loadDailyTasks(ctx, schedule); err != nil {
			return nil, err
		}
		if _, err := s.UpdateStreak(ctx, userID, schedule); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("daily_task_updated",
		zap.String("user_id", userID.String()),
		zap.String("daily_task_id", next.ID.String()),
		zap.Bool("is_completed", next.IsCompleted),
	)
	return next, nil
}
