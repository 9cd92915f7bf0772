// Package planner turns task definitions into daily schedules and tracks completion streaks.
// Every operation takes the acting user's id explicitly.
package planner

import (
	"time"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/benvon/smart-planner/internal/services/planner"

// Clocker supplies the current time. Dates derived from it are naive local dates.
type Clocker interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clocker
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock
var SystemClock Clocker = ClockFunc(time.Now)

// Service owns the materialization, lifecycle, streak and progress operations
type Service struct {
	tasks      database.TaskRepositoryInterface
	schedules  database.ScheduleRepositoryInterface
	dailyTasks database.DailyTaskRepositoryInterface
	streaks    database.StreakRepositoryInterface

	clock  Clocker
	logger *zap.Logger
	tracer trace.Tracer
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the wall clock
func WithClock(c Clocker) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracerProvider sets where spans are recorded
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewService creates a planner service
func NewService(
	tasks database.TaskRepositoryInterface,
	schedules database.ScheduleRepositoryInterface,
	dailyTasks database.DailyTaskRepositoryInterface,
	streaks database.StreakRepositoryInterface,
	opts ...Option,
) *Service {
	s := &Service{
		tasks:      tasks,
		schedules:  schedules,
		dailyTasks: dailyTasks,
		streaks:    streaks,
		clock:      SystemClock,
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the current calendar date
func (s *Service) Today() time.Time {
	return models.DateOf(s.clock.Now())
}
