package handlers

import (
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/services/planner"
	"github.com/google/uuid"
)

// TaskView is the wire form of a task
type TaskView struct {
	*models.Task
	Date     string  `json:"date"`
	Duration float64 `json:"duration"`
}

func newTaskView(t *models.Task) TaskView {
	return TaskView{
		Task:     t,
		Date:     models.FormatDate(t.Date),
		Duration: planner.Hours(t.StartTime, t.EndTime),
	}
}

func newTaskViews(tasks []*models.Task) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, newTaskView(t))
	}
	return views
}

// DailyTaskView is the wire form of a daily task
type DailyTaskView struct {
	*models.DailyTask
	CategoryName string  `json:"category_name"`
	Duration     float64 `json:"duration"`
}

func newDailyTaskView(dt *models.DailyTask) DailyTaskView {
	return DailyTaskView{
		DailyTask:    dt,
		CategoryName: string(dt.Category),
		Duration:     planner.Hours(dt.StartTime, dt.EndTime),
	}
}

// ScheduleView is the wire form of a schedule with its daily tasks and completion counts
type ScheduleView struct {
	ID                   uuid.UUID       `json:"id"`
	UserID               uuid.UUID       `json:"user_id"`
	Date                 string          `json:"date"`
	DailyTasks           []DailyTaskView `json:"daily_tasks"`
	CompletedTasksCount  int             `json:"completed_tasks_count"`
	TotalTasksCount      int             `json:"total_tasks_count"`
	CompletionPercentage int             `json:"completion_percentage"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func newScheduleView(s *models.DailySchedule) ScheduleView {
	progress := s.Progress()
	tasks := make([]DailyTaskView, 0, len(s.DailyTasks))
	for _, dt := range s.DailyTasks {
		tasks = append(tasks, newDailyTaskView(dt))
	}
	return ScheduleView{
		ID:                   s.ID,
		UserID:               s.UserID,
		Date:                 models.FormatDate(s.Date),
		DailyTasks:           tasks,
		CompletedTasksCount:  progress.Completed,
		TotalTasksCount:      progress.Total,
		CompletionPercentage: progress.Percentage(),
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

// StreakView is the wire form of a progress streak
type StreakView struct {
	*models.ProgressStreak
	LastUpdated *string `json:"last_updated"`
}

func newStreakView(s *models.ProgressStreak) StreakView {
	v := StreakView{ProgressStreak: s}
	if s.LastUpdated != nil {
		d := models.FormatDate(*s.LastUpdated)
		v.LastUpdated = &d
	}
	return v
}
