package planner

import (
	"time"

	"github.com/benvon/smart-planner/internal/models"
)

// ShouldOccur reports whether a recurring task fires on date.
// Monthly tasks match on day of month only, so an anchor of the 31st never fires in shorter months.
func ShouldOccur(task *models.Task, date time.Time) bool {
	if task == nil || !task.IsRecurring {
		return false
	}

	daysDiff := models.DaysBetween(task.Date, date)
	if daysDiff < 0 {
		return false
	}

	switch task.RecurrencePattern {
	case models.RecurrenceDaily:
		return true
	case models.RecurrenceWeekly:
		return daysDiff%7 == 0
	case models.RecurrenceMonthly:
		return date.Day() == task.Date.Day()
	default:
		return false
	}
}
