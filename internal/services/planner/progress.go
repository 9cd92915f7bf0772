package planner

import (
	"context"
	"fmt"
	"math"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
)

// weeklyWindowDays is how far back the weekly average reaches, inclusive of both ends
const weeklyWindowDays = 7

// TodayProgress is the completion tally of today's schedule
type TodayProgress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// StreakSummary is the streak part of a progress report
type StreakSummary struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// ProgressReport is the composite progress view
type ProgressReport struct {
	Today     TodayProgress `json:"today"`
	Streak    StreakSummary `json:"streak"`
	WeeklyAvg float64       `json:"weekly_avg"`
}

// Stats materializes today's schedule, ensures the streak exists and averages completion over
// [today-7, today]
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (*ProgressReport, error) {
	ctx, span := s.tracer.Start(ctx, "planner.Stats")
	defer span.End()

	today := s.Today()

	schedule, err := s.Materialize(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	streak, err := s.EnsureStreak(ctx, userID)
	if err != nil {
		return nil, err
	}

	week, err := s.schedules.ListProgressBetween(ctx, userID, models.AddDays(today, -weeklyWindowDays), today)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly progress: %w", err)
	}

	progress := schedule.Progress()
	return &ProgressReport{
		Today: TodayProgress{
			Completed:  progress.Completed,
			Total:      progress.Total,
			Percentage: progress.Percentage(),
		},
		Streak: StreakSummary{
			Current: streak.CurrentStreak,
			Longest: streak.LongestStreak,
		},
		WeeklyAvg: WeeklyAverage(week),
	}, nil
}

// WeeklyAverage is the mean completion percentage rounded to one decimal, or 0 with no schedules
func WeeklyAverage(progress []models.ScheduleProgress) float64 {
	if len(progress) == 0 {
		return 0
	}
	sum := 0
	for _, p := range progress {
		sum += p.Percentage()
	}
	mean := float64(sum) / float64(len(progress))
	return math.RoundToEven(mean*10) / 10
}
