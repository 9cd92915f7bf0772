package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/spf13/cobra"
)

// NewCategoriesCmd creates the categories command
func NewCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage task categories",
	}
	cmd.AddCommand(newCategoriesSeedCmd(), newCategoriesListCmd())
	return cmd
}

func newCategoriesSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default categories",
		Long:  "Create the seven default categories with their colors. Existing categories are left untouched.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := db.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			created, err := database.NewCategoryRepository(db).Seed(cmd.Context(), models.DefaultCategories)
			if err != nil {
				return fmt.Errorf("failed to seed categories: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded categories: %d created, %d already present\n",
				created, len(models.DefaultCategories)-created)
			return nil
		},
	}
}

func newCategoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()

			categories, err := database.NewCategoryRepository(db).List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}
			return printCategories(cmd, categories)
		},
	}
}

func printCategories(cmd *cobra.Command, categories []models.Category) error {
	if len(categories) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No categories. Run `configure categories seed` first.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLABEL\tCOLOR")
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Label, c.Color)
	}
	return tw.Flush()
}
