package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/smart-planner/internal/queue"
)

func TestScheduler_NightlyMaterializationEnqueuesToday(t *testing.T) {
	t.Parallel()

	pub := &mockPublisher{}
	s := NewScheduler(time.UTC, pub, nil)
	s.now = func() time.Time { return time.Date(2024, 7, 4, 0, 0, 5, 0, time.UTC) }

	id, err := s.ScheduleNightlyMaterialization("0 0 0 * * *")
	if err != nil {
		t.Fatalf("ScheduleNightlyMaterialization() error = %v", err)
	}

	s.cron.Entry(id).Job.Run()

	if len(pub.jobs) != 1 {
		t.Fatalf("Expected 1 enqueued job, got %d", len(pub.jobs))
	}
	job := pub.jobs[0]
	if job.Type != queue.JobTypeMaterializeAll {
		t.Errorf("Type = %s, want %s", job.Type, queue.JobTypeMaterializeAll)
	}
	if job.Date != "2024-07-04" {
		t.Errorf("Date = %s, want 2024-07-04", job.Date)
	}
}

func TestScheduler_InvalidSpec(t *testing.T) {
	t.Parallel()

	s := NewScheduler(time.UTC, &mockPublisher{}, nil)
	if _, err := s.ScheduleNightlyMaterialization("not a cron"); err == nil {
		t.Error("Expected an error for an invalid cron spec")
	}
}

func TestScheduler_ReminderSweep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		interval time.Duration
		wantErr  bool
	}{
		{name: "one minute", interval: time.Minute},
		{name: "sub-second rounds up", interval: 100 * time.Millisecond},
		{name: "zero rejected", interval: 0, wantErr: true},
		{name: "negative rejected", interval: -time.Second, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pub := &mockPublisher{}
			s := NewScheduler(time.UTC, pub, nil)
			id, err := s.ScheduleReminderSweep(tt.interval)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ScheduleReminderSweep() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			s.cron.Entry(id).Job.Run()
			if len(pub.jobs) != 1 || pub.jobs[0].Type != queue.JobTypeReminderSweep {
				t.Errorf("Expected one reminder_sweep job, got %v", pub.jobs)
			}
		})
	}
}

func TestScheduler_EnqueueFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	pub := &mockPublisher{
		enqueueFunc: func(context.Context, *queue.Job) error { return errors.New("broker down") },
	}
	s := NewScheduler(time.UTC, pub, nil)
	id, err := s.ScheduleReminderSweep(time.Minute)
	if err != nil {
		t.Fatalf("ScheduleReminderSweep() error = %v", err)
	}

	s.cron.Entry(id).Job.Run()
	if len(pub.jobs) != 1 {
		t.Errorf("Expected one enqueue attempt, got %d", len(pub.jobs))
	}
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, &mockPublisher{}, nil)
	s.Start()
	s.Stop()
}
