package repository

import (
	"context"
	"time"

	"washtrack-backend/internal/db"
	"washtrack-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type EmployeeRepository struct {
	DB *db.Postgres
}

type CreateEmployeeInput struct {
	BranchID  int64
	Name      string
	Phone     string
	Position  string
	Salary    decimal.Decimal
	StartDate time.Time
}

type UpdateEmployeeInput struct {
	Name     *string
	Phone    *string
	Position *string
	Status   *domain.EmployeeStatus
	Salary   *decimal.Decimal
	EndDate  *time.Time
}

const employeeColumns = `id, branch_id, name, phone, position, status, salary, start_date, end_date, created_at, updated_at`

func (r EmployeeRepository) Create(ctx context.Context, in CreateEmployeeInput) (*domain.Employee, error) {
	var e domain.Employee
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO employees (branch_id, name, phone, position, salary, start_date)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING `+employeeColumns+`
	`, in.BranchID, in.Name, in.Phone, in.Position, in.Salary, in.StartDate.Format("2006-01-02")).Scan(
		&e.ID, &e.BranchID, &e.Name, &e.Phone, &e.Position, (*string)(&e.Status), &e.Salary,
		&e.StartDate, &e.EndDate, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r EmployeeRepository) List(ctx context.Context, branchID int64) ([]domain.Employee, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE deleted_at IS NULL AND branch_id = $1
		ORDER BY name ASC
	`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Employee
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.ID, &e.BranchID, &e.Name, &e.Phone, &e.Position, (*string)(&e.Status),
			&e.Salary, &e.StartDate, &e.EndDate, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r EmployeeRepository) Get(ctx context.Context, id, branchID int64) (*domain.Employee, error) {
	var e domain.Employee
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE deleted_at IS NULL AND id = $1 AND branch_id = $2
	`, id, branchID).Scan(
		&e.ID, &e.BranchID, &e.Name, &e.Phone, &e.Position, (*string)(&e.Status), &e.Salary,
		&e.StartDate, &e.EndDate, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r EmployeeRepository) Update(ctx context.Context, id, branchID int64, in UpdateEmployeeInput) (*domain.Employee, error) {
	var e domain.Employee
	var endDate any
	if in.EndDate != nil {
		endDate = in.EndDate.Format("2006-01-02")
	}
	err := r.DB.Pool.QueryRow(ctx, `
		UPDATE employees SET
			name       = COALESCE($3, name),
			phone      = COALESCE($4, phone),
			position   = COALESCE($5, position),
			status     = COALESCE($6, status),
			salary     = COALESCE($7, salary),
			end_date   = COALESCE($8::date, end_date),
			updated_at = now()
		WHERE deleted_at IS NULL AND id = $1 AND branch_id = $2
		RETURNING `+employeeColumns+`
	`, id, branchID, in.Name, in.Phone, in.Position, (*string)(in.Status), in.Salary, endDate).Scan(
		&e.ID, &e.BranchID, &e.Name, &e.Phone, &e.Position, (*string)(&e.Status), &e.Salary,
		&e.StartDate, &e.EndDate, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// CountByStatus counts employees per status. A nil branchID counts across all
// branches.
func (r EmployeeRepository) CountByStatus(ctx context.Context, branchID *int64) (map[domain.EmployeeStatus]int, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM employees
		WHERE deleted_at IS NULL AND ($1::bigint IS NULL OR branch_id = $1)
		GROUP BY status
	`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[domain.EmployeeStatus]int{
		domain.EmployeeActive:   0,
		domain.EmployeeResigned: 0,
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.EmployeeStatus(status)] = n
	}
	return counts, rows.Err()
}
