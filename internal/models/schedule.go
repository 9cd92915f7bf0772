package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DailySchedule is the set of concrete task occurrences for one user on one date.
// It is a derived view and can always be regenerated from Task definitions.
type DailySchedule struct {
	ID         uuid.UUID    `json:"id"`
	UserID     uuid.UUID    `json:"user_id"`
	Date       time.Time    `json:"-"`
	DailyTasks []*DailyTask `json:"daily_tasks"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// DailyTask is one independently completable occurrence on a schedule. Title, category, times and
// priority are a snapshot taken at materialization; OriginalTaskID is a weak reference and may be nil.
type DailyTask struct {
	ID             uuid.UUID    `json:"id"`
	ScheduleID     uuid.UUID    `json:"schedule_id"`
	OriginalTaskID *uuid.UUID   `json:"original_task_id,omitempty"`
	Title          string       `json:"title"`
	Category       CategoryName `json:"category"`
	CategoryColor  string       `json:"category_color,omitempty"`
	StartTime      TimeOfDay    `json:"start_time"`
	EndTime        TimeOfDay    `json:"end_time"`
	Priority       Priority     `json:"priority"`
	IsCompleted    bool         `json:"is_completed"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// ScheduleProgress is the completion tally of one schedule
type ScheduleProgress struct {
	ScheduleID uuid.UUID `json:"schedule_id"`
	Date       time.Time `json:"-"`
	Completed  int       `json:"completed"`
	Total      int       `json:"total"`
}

// Percentage is round(100 * completed / total), or 0 for an empty day
func (p ScheduleProgress) Percentage() int {
	return CompletionPercentage(p.Completed, p.Total)
}

// CompletionPercentage rounds half to even, matching how the stored history was computed
func CompletionPercentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(completed) / float64(total) * 100))
}

// Progress tallies the schedule's loaded daily tasks
func (s *DailySchedule) Progress() ScheduleProgress {
	p := ScheduleProgress{ScheduleID: s.ID, Date: s.Date, Total: len(s.DailyTasks)}
	for _, dt := range s.DailyTasks {
		if dt.IsCompleted {
			p.Completed++
		}
	}
	return p
}

// Clone returns a shallow copy safe to mutate without touching the receiver
func (dt *DailyTask) Clone() *DailyTask {
	c := *dt
	if dt.OriginalTaskID != nil {
		id := *dt.OriginalTaskID
		c.OriginalTaskID = &id
	}
	if dt.CompletedAt != nil {
		at := *dt.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}
