package queue

import (
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeMaterializeSchedule materializes one user's schedule for Date
	JobTypeMaterializeSchedule JobType = "materialize_schedule"
	// JobTypeMaterializeAll materializes Date for every user with recurring tasks
	JobTypeMaterializeAll JobType = "materialize_all"
	// JobTypeReminderSweep marks due reminders as sent
	JobTypeReminderSweep JobType = "reminder_sweep"
)

const defaultMaxRetries = 3

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Type       JobType    `json:"type"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	Date       string     `json:"date,omitempty"`       // YYYY-MM-DD
	NotBefore  *time.Time `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	CreatedAt  time.Time  `json:"created_at"`
	RetryCount int        `json:"retry_count"`
	MaxRetries int        `json:"max_retries"`
}

func newJob(jobType JobType) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		CreatedAt:  time.Now(),
		MaxRetries: defaultMaxRetries,
	}
}

// NewMaterializeScheduleJob creates a job for one user's schedule
func NewMaterializeScheduleJob(userID uuid.UUID, date time.Time) *Job {
	job := newJob(JobTypeMaterializeSchedule)
	job.UserID = &userID
	job.Date = models.FormatDate(date)
	return job
}

// NewMaterializeAllJob creates a bulk regeneration job. The job expires at the end of its date.
func NewMaterializeAllJob(date time.Time) *Job {
	job := newJob(JobTypeMaterializeAll)
	job.Date = models.FormatDate(date)
	expires := models.AddDays(date, 1)
	job.NotAfter = &expires
	return job
}

// NewReminderSweepJob creates a reminder sweep. Sweeps are not retried; the next one picks up the slack.
func NewReminderSweepJob() *Job {
	job := newJob(JobTypeReminderSweep)
	job.MaxRetries = 0
	return job
}

// ScheduleDate parses the job's Date
func (j *Job) ScheduleDate() (time.Time, error) {
	if j.Date == "" {
		return time.Time{}, fmt.Errorf("date is required for %s job", j.Type)
	}
	return models.ParseDate(j.Date)
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	return !j.IsExpired()
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
