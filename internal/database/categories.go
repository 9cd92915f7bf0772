package database

import (
	"context"
	"fmt"

	"github.com/benvon/smart-planner/internal/models"
)

// CategoryRepository handles the shared category catalogue
type CategoryRepository struct {
	db *DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns every category ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, label, color FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.Name, &c.Label, &c.Color); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// Seed inserts the given categories, leaving existing rows untouched. Returns how many were created.
func (r *CategoryRepository) Seed(ctx context.Context, categories []models.Category) (int, error) {
	query := `
		INSERT INTO categories (name, label, color)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
	`

	created := 0
	for _, c := range categories {
		result, err := r.db.ExecContext(ctx, query, c.Name, c.Label, c.Color)
		if err != nil {
			return created, fmt.Errorf("failed to seed category %s: %w", c.Name, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return created, fmt.Errorf("failed to get rows affected: %w", err)
		}
		created += int(n)
	}
	return created, nil
}
