package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/services/planner"
	"github.com/spf13/cobra"
)

// NewSchedulesCmd creates the schedules command
func NewSchedulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "Generate daily schedules",
	}
	cmd.AddCommand(newSchedulesGenerateCmd())
	return cmd
}

func newSchedulesGenerateCmd() *cobra.Command {
	var dateFlag string
	var enqueue, verbose bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Materialize schedules for every user with recurring tasks",
		Long: "Materialize the schedule for the given date (default today) for every user that has " +
			"recurring tasks. Existing schedules only gain missing daily tasks. With --enqueue the work " +
			"is handed to the worker as a materialize_all job instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := resolveDate(dateFlag, time.Now())
			if err != nil {
				return err
			}

			cfg, db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			if enqueue {
				return enqueueMaterializeAll(cmd, cfg.RabbitMQURL, date)
			}

			log, err := logger.NewConsole(verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync(log) }()

			repos := database.NewRepositories(db)
			svc := planner.NewService(repos.Tasks, repos.Schedules, repos.DailyTasks, repos.Streaks, planner.WithLogger(log))

			users, err := svc.MaterializeAll(cmd.Context(), date)
			if err != nil {
				return fmt.Errorf("failed to generate schedules for %s: %w", models.FormatDate(date), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated schedules for %s: %d users\n", models.FormatDate(date), users)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Date to generate (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "Publish a materialize_all job instead of generating in-process")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log each materialized schedule")

	return cmd
}

// resolveDate parses a YYYY-MM-DD flag value, defaulting to the calendar date of now
func resolveDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return models.DateOf(now), nil
	}
	date, err := models.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", value)
	}
	return date, nil
}

func enqueueMaterializeAll(cmd *cobra.Command, amqpURL string, date time.Time) error {
	if amqpURL == "" {
		return fmt.Errorf("--enqueue requires RABBITMQ_URL")
	}
	q, err := queue.NewRabbitMQQueue(amqpURL, nil)
	if err != nil {
		return err
	}
	defer func() { _ = q.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	job := queue.NewMaterializeAllJob(date)
	if err := q.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %s job %s for %s\n", job.Type, job.ID, job.Date)
	return nil
}
