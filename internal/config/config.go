package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ulule/limiter/v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL           string
	ServerPort            string
	FrontendURL           string
	EnableHSTS            bool
	RedisURL              string
	RateLimit             string
	RabbitMQURL           string
	RabbitMQPrefetch      int
	JWTSecret             string
	JWTIssuer             string
	ScheduleCron          string
	ReminderSweepInterval time.Duration
	WorkerDebugMode       bool
	ServerDebugMode       bool
	OTELEnabled           bool
	OTELEndpoint          string
	OpenAPIPath           string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return load(os.Getenv)
}

// cronParser accepts the six-field specs the worker scheduler runs with
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func load(getenv func(string) string) (*Config, error) {
	env := envReader(getenv)

	cfg := &Config{
		DatabaseURL:           env.str("DATABASE_URL", ""),
		ServerPort:            env.str("SERVER_PORT", "8080"),
		FrontendURL:           env.str("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:            env.boolean("ENABLE_HSTS", false),
		RedisURL:              env.str("REDIS_URL", "redis://localhost:6379/0"),
		RateLimit:             env.str("RATE_LIMIT", "20-S"),
		RabbitMQURL:           env.str("RABBITMQ_URL", ""),
		RabbitMQPrefetch:      env.integer("RABBITMQ_PREFETCH", 1),
		JWTSecret:             env.str("JWT_SECRET", ""),
		JWTIssuer:             env.str("JWT_ISSUER", ""),
		ScheduleCron:          env.str("SCHEDULE_CRON", "0 5 0 * * *"),
		ReminderSweepInterval: env.duration("REMINDER_SWEEP_INTERVAL", time.Minute),
		WorkerDebugMode:       env.boolean("WORKER_DEBUG_MODE", false),
		ServerDebugMode:       env.boolean("SERVER_DEBUG_MODE", false),
		OTELEnabled:           env.boolean("OTEL_ENABLED", false),
		OTELEndpoint:          env.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OpenAPIPath:           env.str("OPENAPI_PATH", "api/openapi/openapi.yaml"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if _, err := limiter.NewRateFromFormatted(cfg.RateLimit); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", cfg.RateLimit, err)
	}
	if _, err := cronParser.Parse(cfg.ScheduleCron); err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_CRON %q: %w", cfg.ScheduleCron, err)
	}
	if cfg.ReminderSweepInterval <= 0 {
		return nil, fmt.Errorf("REMINDER_SWEEP_INTERVAL must be positive")
	}
	if cfg.RabbitMQPrefetch < 1 {
		cfg.RabbitMQPrefetch = 1
	}

	return cfg, nil
}

// QueueEnabled reports whether a RabbitMQ URL is configured
func (c *Config) QueueEnabled() bool {
	return c.RabbitMQURL != ""
}

type envReader func(string) string

func (e envReader) str(key, defaultValue string) string {
	if value := e(key); value != "" {
		return value
	}
	return defaultValue
}

func (e envReader) boolean(key string, defaultValue bool) bool {
	if value := e(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (e envReader) integer(key string, defaultValue int) int {
	if value := e(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// duration accepts Go duration strings ("90s", "5m") or a bare number of seconds
func (e envReader) duration(key string, defaultValue time.Duration) time.Duration {
	value := e(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return 0
}
