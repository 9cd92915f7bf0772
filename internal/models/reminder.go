package models

import (
	"time"

	"github.com/google/uuid"
)

// ReminderType is the requested delivery channel. Delivery itself happens elsewhere.
type ReminderType string

const (
	ReminderTypeNotification ReminderType = "notification"
	ReminderTypeEmail        ReminderType = "email"
)

// Reminder is a scheduled notification for one daily task
type Reminder struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	DailyTaskID  uuid.UUID    `json:"daily_task_id"`
	ReminderType ReminderType `json:"reminder_type"`
	ReminderTime time.Time    `json:"reminder_time"`
	IsSent       bool         `json:"is_sent"`
	SentAt       *time.Time   `json:"sent_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ShouldSendNow reports whether the reminder is due and not yet sent
func (r *Reminder) ShouldSendNow(now time.Time) bool {
	return !r.IsSent && !now.Before(r.ReminderTime)
}

// MarkSent records delivery at the given time
func (r *Reminder) MarkSent(now time.Time) {
	r.IsSent = true
	r.SentAt = &now
}
