package repository

import (
	"context"

	"washtrack-backend/internal/db"
	"washtrack-backend/internal/domain"
)

type CategoryRepository struct {
	DB *db.Postgres
}

func (r CategoryRepository) Create(ctx context.Context, name string) (*domain.ExpenseCategory, error) {
	var c domain.ExpenseCategory
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO expense_categories (name)
		VALUES ($1)
		RETURNING id, name, created_at
	`, name).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r CategoryRepository) List(ctx context.Context) ([]domain.ExpenseCategory, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, created_at
		FROM expense_categories
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ExpenseCategory
	for rows.Next() {
		var c domain.ExpenseCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
