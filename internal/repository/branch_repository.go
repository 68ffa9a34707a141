package repository

import (
	"context"
	"errors"

	"washtrack-backend/internal/db"
	"washtrack-backend/internal/domain"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// IsDuplicate detects unique constraint violation.
func IsDuplicate(err error) bool {
	return db.IsUniqueViolation(err)
}

type BranchRepository struct {
	DB *db.Postgres
}

type CreateBranchInput struct {
	Slug    string
	Name    string
	Address string
	Phone   string
}

type UpdateBranchInput struct {
	Name     *string
	Address  *string
	Phone    *string
	IsActive *bool
}

const branchColumns = `id, slug, name, address, phone, is_active, created_at, updated_at`

func (r BranchRepository) Create(ctx context.Context, in CreateBranchInput) (*domain.Branch, error) {
	var b domain.Branch
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO branches (slug, name, address, phone)
		VALUES ($1,$2,$3,$4)
		RETURNING `+branchColumns+`
	`, in.Slug, in.Name, in.Address, in.Phone).Scan(
		&b.ID, &b.Slug, &b.Name, &b.Address, &b.Phone, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r BranchRepository) List(ctx context.Context, activeOnly bool) ([]domain.Branch, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+branchColumns+`
		FROM branches
		WHERE deleted_at IS NULL AND ($1 = false OR is_active)
		ORDER BY name ASC
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Branch
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.Slug, &b.Name, &b.Address, &b.Phone, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r BranchRepository) GetBySlug(ctx context.Context, slug string) (*domain.Branch, error) {
	var b domain.Branch
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT `+branchColumns+`
		FROM branches
		WHERE deleted_at IS NULL AND slug = $1
	`, slug).Scan(&b.ID, &b.Slug, &b.Name, &b.Address, &b.Phone, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r BranchRepository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	var b domain.Branch
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT `+branchColumns+`
		FROM branches
		WHERE deleted_at IS NULL AND id = $1
	`, id).Scan(&b.ID, &b.Slug, &b.Name, &b.Address, &b.Phone, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r BranchRepository) Update(ctx context.Context, id int64, in UpdateBranchInput) (*domain.Branch, error) {
	var b domain.Branch
	err := r.DB.Pool.QueryRow(ctx, `
		UPDATE branches SET
			name       = COALESCE($2, name),
			address    = COALESCE($3, address),
			phone      = COALESCE($4, phone),
			is_active  = COALESCE($5, is_active),
			updated_at = now()
		WHERE deleted_at IS NULL AND id = $1
		RETURNING `+branchColumns+`
	`, id, in.Name, in.Address, in.Phone, in.IsActive).Scan(
		&b.ID, &b.Slug, &b.Name, &b.Address, &b.Phone, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r BranchRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM branches WHERE deleted_at IS NULL AND is_active
	`).Scan(&n)
	return n, err
}
