package commands

import "github.com/spf13/cobra"

// NewRootCmd assembles the configure CLI
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "smart-planner-configure",
		Short:         "Operations tool for the Smart Planner API",
		Long:          "CLI tool for seeding categories, generating schedules, inspecting reminders and issuing tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewCategoriesCmd())
	rootCmd.AddCommand(NewSchedulesCmd())
	rootCmd.AddCommand(NewRemindersCmd())
	rootCmd.AddCommand(NewTokenCmd())
	rootCmd.AddCommand(NewCheckCmd())

	return rootCmd
}
