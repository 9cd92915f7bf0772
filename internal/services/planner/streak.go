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
	"go.uber.org/zap"
)

// QualifyingPercentage is the completion a day needs to count toward a streak
const QualifyingPercentage = 80

// ApplyStreak evaluates one day's progress against streak and returns the updated copy.
//
// today is the evaluation date, not the schedule's date: completing a task on a past schedule is
// judged as if it happened today. A streak already evaluated today, or stamped with a later date
// after the clock moved back, keeps its current count.
func ApplyStreak(streak *models.ProgressStreak, progress models.ScheduleProgress, today time.Time) *models.ProgressStreak {
	next := *streak
	today = models.DateOf(today)

	if progress.Percentage() >= QualifyingPercentage {
		switch {
		case next.LastUpdated != nil && models.DaysBetween(*next.LastUpdated, today) <= 0:
			// already evaluated today, or last_updated is ahead of the clock
		case next.LastUpdated != nil && models.DaysBetween(*next.LastUpdated, today) == 1:
			next.CurrentStreak++
		default:
			next.CurrentStreak = 1
		}
		if next.CurrentStreak > next.LongestStreak {
			next.LongestStreak = next.CurrentStreak
		}
	} else {
		next.CurrentStreak = 0
	}

	next.LastUpdated = &today
	return &next
}

// EnsureStreak returns the user's streak, creating an empty one on first use
func (s *Service) EnsureStreak(ctx context.Context, userID uuid.UUID) (*models.ProgressStreak, error) {
	streak, err := s.streaks.GetByUserID(ctx, userID)
	if err == nil {
		return streak, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}

	streak = &models.ProgressStreak{UserID: userID}
	if err := s.streaks.Create(ctx, streak); err != nil {
		if !errors.Is(err, database.ErrConflict) {
			return nil, err
		}
		streak, err = s.streaks.GetByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get streak after conflict: %w", err)
		}
	}
	return streak, nil
}

// UpdateStreak evaluates schedule's completion for the user and persists the result.
// schedule must have its daily tasks loaded.
func (s *Service) UpdateStreak(ctx context.Context, userID uuid.UUID, schedule *models.DailySchedule) (*models.ProgressStreak, error) {
	ctx, span := s.tracer.Start(ctx, "planner.UpdateStreak")
	defer span.End()

	streak, err := s.EnsureStreak(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress := schedule.Progress()
	next := ApplyStreak(streak, progress, s.Today())
	if err := s.streaks.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to update streak: %w", err)
	}

	span.SetAttributes(
		attribute.Int("streak.current", next.CurrentStreak),
		attribute.Int("streak.longest", next.LongestStreak),
	)
	s.logger.Info("streak_updated",
		zap.String("user_id", userID.String()),
		zap.Int("percentage", progress.Percentage()),
		zap.Int("current", next.CurrentStreak),
		zap.Int("longest", next.LongestStreak),
	)
	return next, nil
}
