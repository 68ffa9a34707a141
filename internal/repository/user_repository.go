package repository

import (
	"context"

	"washtrack-backend/internal/db"
	"washtrack-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

type UserRepository struct {
	DB *db.Postgres
}

type CreateUserInput struct {
	BranchID     *int64
	Name         string
	Email        string
	Role         domain.Role
	PasswordHash string
}

func (r UserRepository) Create(ctx context.Context, in CreateUserInput) (*domain.AdminUser, error) {
	var u domain.AdminUser
	var branchID pgtype.Int8
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO admin_users (branch_id, name, email, role, password_hash)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, branch_id, name, email, role, password_hash, created_at, updated_at
	`, in.BranchID, in.Name, in.Email, string(in.Role), in.PasswordHash).Scan(
		&u.ID, &branchID, &u.Name, &u.Email, (*string)(&u.Role), &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if branchID.Valid {
		u.BranchID = &branchID.Int64
	}
	return &u, nil
}

func (r UserRepository) List(ctx context.Context) ([]domain.AdminUser, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, branch_id, name, email, role, password_hash, created_at, updated_at
		FROM admin_users
		WHERE deleted_at IS NULL
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.AdminUser
	for rows.Next() {
		var u domain.AdminUser
		var branchID pgtype.Int8
		if err := rows.Scan(&u.ID, &branchID, &u.Name, &u.Email, (*string)(&u.Role),
			&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if branchID.Valid {
			u.BranchID = &branchID.Int64
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	return r.getOne(ctx, `email = $1`, email)
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r UserRepository) getOne(ctx context.Context, cond string, arg any) (*domain.AdminUser, error) {
	var u domain.AdminUser
	var branchID pgtype.Int8
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, branch_id, name, email, role, password_hash, created_at, updated_at
		FROM admin_users
		WHERE deleted_at IS NULL AND `+cond,
		arg).Scan(
		&u.ID, &branchID, &u.Name, &u.Email, (*string)(&u.Role), &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if branchID.Valid {
		u.BranchID = &branchID.Int64
	}
	return &u, nil
}
