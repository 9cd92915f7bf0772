package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority ranks tasks within a day
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// RecurrencePattern controls how a recurring task expands into daily tasks
type RecurrencePattern string

const (
	RecurrenceNone    RecurrencePattern = "none"
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
)

// Task is a user-defined template, one-off or recurring.
//
// IsCompleted on the definition is kept for API compatibility only; per-day completion lives on
// DailyTask and nothing in the planner reads this flag.
type Task struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	Category          CategoryName      `json:"category"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Date              time.Time         `json:"-"`
	StartTime         TimeOfDay         `json:"start_time"`
	EndTime           TimeOfDay         `json:"end_time"`
	Priority          Priority          `json:"priority"`
	IsRecurring       bool              `json:"is_recurring"`
	RecurrencePattern RecurrencePattern `json:"recurrence_pattern"`
	IsCompleted       bool              `json:"is_completed"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
