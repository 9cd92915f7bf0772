package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Materialize returns the user's schedule for date, creating it and any missing occurrences of
// recurring tasks that fire on that date. Existing daily tasks are never overwritten, so repeated
// calls create nothing new. If a write fails partway, rows already created stay and a retry is safe.
func (s *Service) Materialize(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailySchedule, error) {
	date = models.DateOf(date)

	ctx, span := s.tracer.Start(ctx, "planner.Materialize", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("schedule.date", models.FormatDate(date)),
	))
	defer span.End()

	schedule, err := s.getOrCreateSchedule(ctx, userID, date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "schedule")
		return nil, err
	}

	tasks, err := s.tasks.ListRecurringByUser(ctx, userID, date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recurring tasks")
		return nil, fmt.Errorf("failed to list recurring tasks: %w", err)
	}

	created := 0
	for _, task := range tasks {
		if !ShouldOccur(task, date) {
			continue
		}
		ok, err := s.ensureDailyTask(ctx, schedule, task)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "daily task")
			return nil, err
		}
		if ok {
			created++
		}
	}

	if err := s.loadDailyTasks(ctx, schedule); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("daily_tasks.created", created))
	if created > 0 {
		s.logger.Info("schedule_materialized",
			zap.String("user_id", userID.String()),
			zap.String("date", models.FormatDate(date)),
			zap.Int("created", created),
			zap.Int("total", len(schedule.DailyTasks)),
		)
	}
	return schedule, nil
}

// MaterializeToday is Materialize for the current date
func (s *Service) MaterializeToday(ctx context.Context, userID uuid.UUID) (*models.DailySchedule, error) {
	return s.Materialize(ctx, userID, s.Today())
}

// MaterializeAll materializes date for every user with a recurring task. A failing user does not stop
// the rest; their errors are joined into the returned error.
func (s *Service) MaterializeAll(ctx context.Context, date time.Time) (int, error) {
	date = models.DateOf(date)

	userIDs, err := s.tasks.ListUserIDsWithRecurringTasks(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to list users with recurring tasks: %w", err)
	}

	var errs []error
	done := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := s.Materialize(ctx, userID, date); err != nil {
			s.logger.Error("schedule_materialize_failed",
				zap.String("user_id", userID.String()),
				zap.String("date", models.FormatDate(date)),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			continue
		}
		done++
	}

	s.logger.Info("schedules_generated",
		zap.String("date", models.FormatDate(date)),
		zap.Int("users", len(userIDs)),
		zap.Int("succeeded", done),
	)
	return done, errors.Join(errs...)
}

// GetSchedule returns one of the user's schedules with its daily tasks
func (s *Service) GetSchedule(ctx context.Context, userID, scheduleID uuid.UUID) (*models.DailySchedule, error) {
	schedule, err := s.schedules.GetByIDForUser(ctx, scheduleID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.loadDailyTasks(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

// ListSchedules returns the user's schedules newest first, each with its daily tasks
func (s *Service) ListSchedules(ctx context.Context, userID uuid.UUID) ([]*models.DailySchedule, error) {
	schedules, err := s.schedules.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	for _, schedule := range schedules {
		if err := s.loadDailyTasks(ctx, schedule); err != nil {
			return nil, err
		}
	}
	return schedules, nil
}

func (s *Service) loadDailyTasks(ctx context.Context, schedule *models.DailySchedule) error {
	dailyTasks, err := s.dailyTasks.ListBySchedule(ctx, schedule.ID)
	if err != nil {
		return fmt.Errorf("failed to load daily tasks: %w", err)
	}
	schedule.DailyTasks = dailyTasks
	return nil
}

// getOrCreateSchedule converges concurrent creators on the row that won the (user_id, date) constraint
func (s *Service) getOrCreateSchedule(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailySchedule, error) {
	schedule, err := s.schedules.GetByUserAndDate(ctx, userID, date)
	if err == nil {
		return schedule, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	schedule = &models.DailySchedule{
		ID:     uuid.New(),
		UserID: userID,
		Date:   date,
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		if !errors.Is(err, database.ErrConflict) {
			return nil, err
		}
		schedule, err = s.schedules.GetByUserAndDate(ctx, userID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to get schedule after conflict: %w", err)
		}
	}
	return schedule, nil
}

// ensureDailyTask creates the occurrence of task on schedule unless one exists. Reports whether it created a row.
func (s *Service) ensureDailyTask(ctx context.Context, schedule *models.DailySchedule, task *models.Task) (bool, error) {
	_, err := s.dailyTasks.GetByScheduleAndTask(ctx, schedule.ID, task.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return false, fmt.Errorf("failed to get daily task: %w", err)
	}

	originalID := task.ID
	dt := &models.DailyTask{
		ID:             uuid.New(),
		ScheduleID:     schedule.ID,
		OriginalTaskID: &originalID,
		Title:          task.Title,
		Category:       task.Category,
		StartTime:      task.StartTime,
		EndTime:        task.EndTime,
		Priority:       task.Priority,
	}
	if err := s.dailyTasks.Create(ctx, dt); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
