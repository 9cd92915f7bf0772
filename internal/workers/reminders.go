package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/database"
	"go.uber.org/zap"
)

// ReminderSweeper marks due reminders as sent. Delivery is out of scope; a sent reminder is only logged.
type ReminderSweeper struct {
	reminders database.ReminderRepositoryInterface
	now       func() time.Time
	logger    *zap.Logger
}

// NewReminderSweeper creates a new reminder sweeper
func NewReminderSweeper(reminders database.ReminderRepositoryInterface, logger *zap.Logger) *ReminderSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderSweeper{
		reminders: reminders,
		now:       time.Now,
		logger:    logger,
	}
}

// Sweep marks every due reminder as sent and returns how many it marked
func (s *ReminderSweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()

	due, err := s.reminders.ListDue(ctx, now, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	sent := 0
	for _, reminder := range due {
		if !reminder.ShouldSendNow(now) {
			continue
		}
		marked, err := s.reminders.MarkSent(ctx, reminder.ID, now)
		if err != nil {
			return sent, err
		}
		if !marked {
			continue
		}
		sent++
		s.logger.Info("reminder_sent",
			zap.String("reminder_id", reminder.ID.String()),
			zap.String("user_id", reminder.UserID.String()),
			zap.String("daily_task_id", reminder.DailyTaskID.String()),
			zap.String("type", string(reminder.ReminderType)),
		)
	}
	return sent, nil
}
