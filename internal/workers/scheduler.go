package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const enqueueTimeout = 10 * time.Second

// Scheduler enqueues the periodic planner jobs on a cron clock
type Scheduler struct {
	cron      *cron.Cron
	publisher queue.Publisher
	now       func() time.Time
	logger    *zap.Logger
}

// NewScheduler creates a scheduler. Cron specs carry a seconds field.
func NewScheduler(loc *time.Location, publisher queue.Publisher, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

// ScheduleNightlyMaterialization enqueues a materialize_all job for the current date on every tick of the cron expression
func (s *Scheduler) ScheduleNightlyMaterialization(spec string) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() {
		s.enqueue(queue.NewMaterializeAllJob(models.DateOf(s.now())))
	})
	if err != nil {
		return 0, fmt.Errorf("invalid schedule cron %q: %w", spec, err)
	}
	return id, nil
}

// ScheduleReminderSweep enqueues a reminder_sweep job every interval
func (s *Scheduler) ScheduleReminderSweep(interval time.Duration) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), func() {
		s.enqueue(queue.NewReminderSweepJob())
	})
}

func (s *Scheduler) enqueue(job *queue.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()

	if err := s.publisher.Enqueue(ctx, job); err != nil {
		s.logger.Error("scheduled_job_enqueue_failed",
			zap.String("type", string(job.Type)),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("scheduled_job_enqueued",
		zap.String("job_id", job.ID.String()),
		zap.String("type", string(job.Type)),
		zap.String("date", job.Date),
	)
}

// Start runs the cron loop in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
