package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/smart-planner/internal/config"
	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/handlers"
	"github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/middleware"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/services/planner"
	"github.com/benvon/smart-planner/internal/telemetry"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const rabbitMQConnectAttempts = 10

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag
	zapLogger, err := logger.New("server", debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Bool("queue_enabled", cfg.QueueEnabled()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Setup(ctx, cfg.OTELEnabled, "server", handlers.Version, cfg.OTELEndpoint)
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
	tracerProvider := telemetry.Provider(tp)

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
	zapLogger.Info("connected_to_database")

	redisClient, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	rateLimitMW, err := middleware.RateLimit(redisClient, cfg.RateLimit)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}
	zapLogger.Info("connected_to_redis", zap.String("rate_limit", cfg.RateLimit))

	healthChecker := handlers.NewHealthChecker().
		Register("database", db.PingContext).
		Register("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })

	var taskOpts []handlers.TaskHandlerOption
	if cfg.QueueEnabled() {
		jobQueue, err := queue.ConnectWithRetry(ctx, cfg.RabbitMQURL, rabbitMQConnectAttempts, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
		}
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		taskOpts = append(taskOpts, handlers.WithTaskJobQueue(jobQueue))
		healthChecker.Register("rabbitmq", jobQueue.HealthCheck)
	} else {
		zapLogger.Warn("rabbitmq_not_configured_job_publishing_disabled")
	}

	repos := database.NewRepositories(db)
	plannerService := planner.NewService(repos.Tasks, repos.Schedules, repos.DailyTasks, repos.Streaks,
		planner.WithLogger(zapLogger),
		planner.WithTracerProvider(tracerProvider),
	)
	verifier := middleware.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer)

	taskHandler := handlers.NewTaskHandler(repos.Tasks, zapLogger, taskOpts...)
	plannerHandler := handlers.NewPlannerHandler(plannerService, zapLogger)
	reminderHandler := handlers.NewReminderHandler(repos.Reminders, repos.DailyTasks, zapLogger)
	categoryHandler := handlers.NewCategoryHandler(repos.Categories, zapLogger)

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order, first registered is outermost
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	healthChecker.RegisterRoutes(r)
	handlers.NewOpenAPIHandler(cfg.OpenAPIPath).RegisterRoutes(r)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(telemetry.Middleware("server", tracerProvider))
	api.Use(middleware.Auth(repos.Users, verifier, zapLogger))
	api.Use(rateLimitMW)

	taskHandler.RegisterRoutes(api.PathPrefix("/tasks").Subrouter())
	plannerHandler.RegisterRoutes(api)
	reminderHandler.RegisterRoutes(api)
	categoryHandler.RegisterRoutes(api)

	// Preflight requests are answered by the CORS middleware before reaching here
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   middleware.DefaultRequestTimeout + 5*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		zapLogger.Error("server_failed", zap.Error(err))
	}

	zapLogger.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
		return
	}

	zapLogger.Info("server_exited")
}
