package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/workers"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewRemindersCmd creates the reminders command
func NewRemindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Inspect and sweep reminders",
	}
	cmd.AddCommand(newRemindersDueCmd())
	return cmd
}

func newRemindersDueCmd() *cobra.Command {
	var userFlag string
	var markSent bool

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List reminders that should be sent now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var userID *uuid.UUID
			if userFlag != "" {
				id, err := uuid.Parse(userFlag)
				if err != nil {
					return fmt.Errorf("invalid --user %q: %w", userFlag, err)
				}
				userID = &id
			}
			if markSent && userID != nil {
				return fmt.Errorf("--mark-sent sweeps every user and cannot be combined with --user")
			}

			_, db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			repo := database.NewReminderRepository(db)

			if markSent {
				log, err := logger.NewConsole(false)
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				sent, err := workers.NewReminderSweeper(repo, log).Sweep(cmd.Context())
				if err != nil {
					return fmt.Errorf("reminder sweep failed after %d: %w", sent, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Marked %d reminders as sent\n", sent)
				return nil
			}

			due, err := repo.ListDue(cmd.Context(), time.Now(), userID)
			if err != nil {
				return fmt.Errorf("failed to list due reminders: %w", err)
			}
			return printReminders(cmd, due)
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "Only list reminders for this user ID")
	cmd.Flags().BoolVar(&markSent, "mark-sent", false, "Mark every due reminder as sent, as the worker sweep does")

	return cmd
}

func printReminders(cmd *cobra.Command, reminders []*models.Reminder) error {
	if len(reminders) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No reminders due")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tDAILY TASK\tTYPE\tTIME")
	for _, r := range reminders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.UserID, r.DailyTaskID, r.ReminderType, r.ReminderTime.Format(time.RFC3339))
	}
	return tw.Flush()
}
