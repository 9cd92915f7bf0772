package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the Postgres connection pool shared by all repositories
type DB struct {
	*sql.DB
}

// New opens a Postgres connection pool and verifies it is reachable
func New(databaseURL string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}

// Migrate creates the schema if it does not exist. Statements are idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}

// schema carries the uniqueness constraints the planner relies on for idempotent materialization:
// one schedule per (user_id, date), one daily task per (schedule_id, original_task_id), one streak per user.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		provider_id TEXT NOT NULL UNIQUE,
		name TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		name TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '#000000'
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		category TEXT NOT NULL REFERENCES categories(name),
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		date DATE NOT NULL,
		start_time TIME NOT NULL,
		end_time TIME NOT NULL,
		priority TEXT NOT NULL DEFAULT 'medium',
		is_recurring BOOLEAN NOT NULL DEFAULT false,
		recurrence_pattern TEXT NOT NULL DEFAULT 'none',
		is_completed BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT tasks_end_after_start CHECK (end_time > start_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_recurring ON tasks (user_id, is_recurring, date)`,
	`CREATE TABLE IF NOT EXISTS daily_schedules (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT daily_schedules_user_date_key UNIQUE (user_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS daily_tasks (
		id UUID PRIMARY KEY,
		schedule_id UUID NOT NULL REFERENCES daily_schedules(id) ON DELETE CASCADE,
		original_task_id UUID REFERENCES tasks(id) ON DELETE SET NULL,
		title TEXT NOT NULL,
		category TEXT NOT NULL REFERENCES categories(name),
		start_time TIME NOT NULL,
		end_time TIME NOT NULL,
		priority TEXT NOT NULL DEFAULT 'medium',
		is_completed BOOLEAN NOT NULL DEFAULT false,
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT daily_tasks_end_after_start CHECK (end_time > start_time)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS daily_tasks_schedule_task_key
		ON daily_tasks (schedule_id, original_task_id) WHERE original_task_id IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS progress_streaks (
		user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		current_streak INTEGER NOT NULL DEFAULT 0 CHECK (current_streak >= 0),
		longest_streak INTEGER NOT NULL DEFAULT 0 CHECK (longest_streak >= 0),
		last_updated DATE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		daily_task_id UUID NOT NULL REFERENCES daily_tasks(id) ON DELETE CASCADE,
		reminder_type TEXT NOT NULL DEFAULT 'notification',
		reminder_time TIMESTAMPTZ NOT NULL,
		is_sent BOOLEAN NOT NULL DEFAULT false,
		sent_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_pending ON reminders (reminder_time) WHERE is_sent = false`,
}
