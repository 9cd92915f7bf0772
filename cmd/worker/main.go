package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/smart-planner/internal/config"
	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/handlers"
	"github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/services/planner"
	"github.com/benvon/smart-planner/internal/telemetry"
	"github.com/benvon/smart-planner/internal/workers"
	"go.uber.org/zap"
)

const rabbitMQConnectAttempts = 10

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	noCron := flag.Bool("no-cron", false, "Only consume jobs; do not enqueue the nightly and reminder jobs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag
	zapLogger, err := logger.New("worker", debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	if !cfg.QueueEnabled() {
		zapLogger.Fatal("rabbitmq_url_required_for_worker")
	}

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
		zap.String("schedule_cron", cfg.ScheduleCron),
		zap.Duration("reminder_sweep_interval", cfg.ReminderSweepInterval),
		zap.Bool("cron_enabled", !*noCron),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Setup(ctx, cfg.OTELEnabled, "worker", handlers.Version, cfg.OTELEndpoint)
	if err != nil {
		zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
			zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
		}
	}()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	if err := db.Migrate(ctx); err != nil {
		zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
	}

	jobQueue, err := queue.ConnectWithRetry(ctx, cfg.RabbitMQURL, rabbitMQConnectAttempts, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	repos := database.NewRepositories(db)
	plannerService := planner.NewService(repos.Tasks, repos.Schedules, repos.DailyTasks, repos.Streaks,
		planner.WithLogger(zapLogger),
		planner.WithTracerProvider(telemetry.Provider(tp)),
	)
	generator := workers.NewScheduleGenerator(plannerService, workers.NewReminderSweeper(repos.Reminders, zapLogger), jobQueue, zapLogger)

	if !*noCron {
		scheduler := workers.NewScheduler(time.Local, jobQueue, zapLogger)
		if _, err := scheduler.ScheduleNightlyMaterialization(cfg.ScheduleCron); err != nil {
			zapLogger.Fatal("failed_to_schedule_materialization", zap.Error(err))
		}
		if _, err := scheduler.ScheduleReminderSweep(cfg.ReminderSweepInterval); err != nil {
			zapLogger.Fatal("failed_to_schedule_reminder_sweep", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}
	zapLogger.Info("worker_started")

	for {
		select {
		case <-ctx.Done():
			zapLogger.Info("worker_stopping")
			return
		case err, ok := <-errChan:
			if ok {
				zapLogger.Error("queue_error", zap.Error(err))
			}
			// The consumer closes both channels together; nothing more will arrive.
			zapLogger.Info("worker_stopping")
			return
		case msg, ok := <-msgChan:
			if !ok {
				zapLogger.Info("message_channel_closed")
				return
			}
			if err := generator.ProcessJob(ctx, msg); err != nil {
				zapLogger.Error("job_processing_failed",
					zap.String("job_id", msg.GetJob().ID.String()),
					zap.String("job_type", string(msg.GetJob().Type)),
					zap.Error(err),
				)
			}
		}
	}
}
