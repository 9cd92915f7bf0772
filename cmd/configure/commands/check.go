package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/middleware"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to the planner's dependencies",
		Long:  "Connect to Postgres, Redis and (when RABBITMQ_URL is set) RabbitMQ with the current environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()
			fmt.Fprintln(out, "✓ Postgres is reachable")

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if err := db.Migrate(ctx); err != nil {
				return fmt.Errorf("schema migration failed: %w", err)
			}
			fmt.Fprintln(out, "✓ Schema is up to date")

			redisClient, err := middleware.NewRedisClient(cfg.RedisURL)
			if err != nil {
				return err
			}
			_ = redisClient.Close()
			fmt.Fprintln(out, "✓ Redis is reachable")

			if !cfg.QueueEnabled() {
				fmt.Fprintln(out, "- RabbitMQ not configured, job publishing disabled")
				return nil
			}
			q, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, nil)
			if err != nil {
				return err
			}
			defer func() { _ = q.Close() }()
			if err := q.HealthCheck(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "✓ RabbitMQ is reachable and the planner queues are declared")

			return nil
		},
	}
}
