package workers

import (
	"context"
	"sync"
	"time"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/google/uuid"
)

type mockMessage struct {
	job       *queue.Job
	acked     bool
	nacked    bool
	requeued  bool
	ackErr    error
	nackCalls int
}

func (m *mockMessage) Ack() error {
	m.acked = true
	return m.ackErr
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeued = requeue
	m.nackCalls++
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

var _ queue.MessageInterface = (*mockMessage)(nil)

type mockMaterializer struct {
	materializeFunc    func(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailySchedule, error)
	materializeAllFunc func(ctx context.Context, date time.Time) (int, error)
}

func (m *mockMaterializer) Materialize(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailySchedule, error) {
	if m.materializeFunc != nil {
		return m.materializeFunc(ctx, userID, date)
	}
	return &models.DailySchedule{ID: uuid.New(), UserID: userID, Date: date}, nil
}

func (m *mockMaterializer) MaterializeAll(ctx context.Context, date time.Time) (int, error) {
	if m.materializeAllFunc != nil {
		return m.materializeAllFunc(ctx, date)
	}
	return 0, nil
}

var _ ScheduleMaterializer = (*mockMaterializer)(nil)

type mockSweeper struct {
	sweepFunc func(ctx context.Context) (int, error)
}

func (m *mockSweeper) Sweep(ctx context.Context) (int, error) {
	if m.sweepFunc != nil {
		return m.sweepFunc(ctx)
	}
	return 0, nil
}

type mockPublisher struct {
	mu          sync.Mutex
	enqueueFunc func(ctx context.Context, job *queue.Job) error
	jobs        []*queue.Job
}

func (m *mockPublisher) Enqueue(ctx context.Context, job *queue.Job) error {
	m.mu.Lock()
	m.jobs = append(m.jobs, job)
	m.mu.Unlock()
	if m.enqueueFunc != nil {
		return m.enqueueFunc(ctx, job)
	}
	return nil
}

var _ queue.Publisher = (*mockPublisher)(nil)

type mockReminderRepo struct {
	createFunc   func(ctx context.Context, reminder *models.Reminder) error
	listDueFunc  func(ctx context.Context, now time.Time, userID *uuid.UUID) ([]*models.Reminder, error)
	markSentFunc func(ctx context.Context, id uuid.UUID, sentAt time.Time) (bool, error)
}

func (m *mockReminderRepo) Create(ctx context.Context, reminder *models.Reminder) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, reminder)
	}
	return nil
}

func (m *mockReminderRepo) ListDue(ctx context.Context, now time.Time, userID *uuid.UUID) ([]*models.Reminder, error) {
	if m.listDueFunc != nil {
		return m.listDueFunc(ctx, now, userID)
	}
	return nil, nil
}

func (m *mockReminderRepo) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) (bool, error) {
	if m.markSentFunc != nil {
		return m.markSentFunc(ctx, id, sentAt)
	}
	return true, nil
}

var _ database.ReminderRepositoryInterface = (*mockReminderRepo)(nil)
