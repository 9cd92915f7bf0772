package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScheduleMaterializer is the part of the planner the worker drives
type ScheduleMaterializer interface {
	Materialize(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailySchedule, error)
	MaterializeAll(ctx context.Context, date time.Time) (int, error)
}

// Sweeper marks due reminders as sent
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// ScheduleGenerator processes planner jobs from the queue
type ScheduleGenerator struct {
	planner  ScheduleMaterializer
	sweeper  Sweeper
	jobQueue queue.Publisher
	logger   *zap.Logger
}

// NewScheduleGenerator creates a new schedule generator. Failed jobs are retried by publishing
// them again on jobQueue; without one they go straight to the DLQ.
func NewScheduleGenerator(planner ScheduleMaterializer, sweeper Sweeper, jobQueue queue.Publisher, logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{
		planner:  planner,
		sweeper:  sweeper,
		jobQueue: jobQueue,
		logger:   logger,
	}
}

// ProcessJob processes a job based on its type and settles the message
func (g *ScheduleGenerator) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	var err error
	switch job.Type {
	case queue.JobTypeMaterializeSchedule:
		err = g.processMaterializeSchedule(ctx, job)
	case queue.JobTypeMaterializeAll:
		err = g.processMaterializeAll(ctx, job)
	case queue.JobTypeReminderSweep:
		err = g.processReminderSweep(ctx)
	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			g.logger.Error("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err != nil {
		return g.handleJobError(ctx, msg, job, err)
	}
	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

func (g *ScheduleGenerator) processMaterializeSchedule(ctx context.Context, job *queue.Job) error {
	if job.UserID == nil {
		return fmt.Errorf("user_id is required for %s job", job.Type)
	}
	date, err := job.ScheduleDate()
	if err != nil {
		return err
	}

	schedule, err := g.planner.Materialize(ctx, *job.UserID, date)
	if err != nil {
		return fmt.Errorf("failed to materialize schedule: %w", err)
	}

	g.logger.Debug("materialize_job_done",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.String("date", job.Date),
		zap.Int("daily_tasks", len(schedule.DailyTasks)),
	)
	return nil
}

func (g *ScheduleGenerator) processMaterializeAll(ctx context.Context, job *queue.Job) error {
	date, err := job.ScheduleDate()
	if err != nil {
		return err
	}

	n, err := g.planner.MaterializeAll(ctx, date)
	if err != nil {
		return fmt.Errorf("bulk materialization for %s: %w", job.Date, err)
	}

	g.logger.Info("materialize_all_job_done",
		zap.String("job_id", job.ID.String()),
		zap.String("date", job.Date),
		zap.Int("users", n),
	)
	return nil
}

func (g *ScheduleGenerator) processReminderSweep(ctx context.Context) error {
	if g.sweeper == nil {
		return nil
	}
	_, err := g.sweeper.Sweep(ctx)
	return err
}

// handleJobError re-publishes failed jobs with an advanced retry count until their retries run
// out, then dead-letters them. A requeued delivery would carry the original body and its old count.
// Materialization is idempotent, so a retried job only fills in what is missing.
func (g *ScheduleGenerator) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if job.CanRetry() && g.jobQueue != nil {
		retry := *job
		retry.RetryCount = job.RetryCount + 1

		g.logger.Warn("job_failed_will_retry",
			zap.String("job_id", job.ID.String()),
			zap.String("type", string(job.Type)),
			zap.Int("attempt", retry.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err),
		)

		if enqueueErr := g.jobQueue.Enqueue(ctx, &retry); enqueueErr != nil {
			g.logger.Error("job_retry_enqueue_failed", zap.String("job_id", job.ID.String()), zap.Error(enqueueErr))
			if nackErr := msg.Nack(false); nackErr != nil {
				g.logger.Error("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
			}
			return fmt.Errorf("job failed, re-enqueue failed: %w", err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			g.logger.Error("job_ack_failed", zap.String("job_id", job.ID.String()), zap.Error(ackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	g.logger.Error("job_failed_sending_to_dlq",
		zap.String("job_id", job.ID.String()),
		zap.String("type", string(job.Type)),
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Error(err),
	)
	if nackErr := msg.Nack(false); nackErr != nil {
		g.logger.Error("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}
