package repository

import (
	"context"

	"washtrack-backend/internal/db"
	"washtrack-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type PayrollRepository struct {
	DB *db.Postgres
}

type CreatePayrollInput struct {
	BranchID   int64
	EmployeeID int64
	Month      int
	Year       int
	BaseSalary decimal.Decimal
	Overtime   decimal.Decimal
	Deductions decimal.Decimal
	TotalPay   decimal.Decimal
}

// Create records a month's payroll. The employee must belong to the branch; a
// mismatched employeeId returns ErrNotFound.
func (r PayrollRepository) Create(ctx context.Context, in CreatePayrollInput) (*domain.PayrollRecord, error) {
	var p domain.PayrollRecord
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO payroll_records (branch_id, employee_id, month, year, base_salary, overtime, deductions, total_pay)
		SELECT $1, e.id, $3, $4, $5, $6, $7, $8
		FROM employees e
		WHERE e.id = $2 AND e.branch_id = $1 AND e.deleted_at IS NULL
		RETURNING id, branch_id, employee_id, month, year, base_salary, overtime, deductions, total_pay, paid_at, created_at
	`, in.BranchID, in.EmployeeID, in.Month, in.Year, in.BaseSalary, in.Overtime, in.Deductions, in.TotalPay).Scan(
		&p.ID, &p.BranchID, &p.EmployeeID, &p.Month, &p.Year, &p.BaseSalary, &p.Overtime,
		&p.Deductions, &p.TotalPay, &p.PaidAt, &p.CreatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r PayrollRepository) ListMonth(ctx context.Context, branchID int64, month, year int) ([]domain.PayrollRecord, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, branch_id, employee_id, month, year, base_salary, overtime, deductions, total_pay, paid_at, created_at
		FROM payroll_records
		WHERE branch_id = $1 AND month = $2 AND year = $3
		ORDER BY employee_id ASC
	`, branchID, month, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.PayrollRecord
	for rows.Next() {
		var p domain.PayrollRecord
		if err := rows.Scan(&p.ID, &p.BranchID, &p.EmployeeID, &p.Month, &p.Year, &p.BaseSalary,
			&p.Overtime, &p.Deductions, &p.TotalPay, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// SumMonth totals the pay for one branch and calendar month; no rows yields zero.
func (r PayrollRepository) SumMonth(ctx context.Context, branchID int64, month, year int) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_pay), 0)
		FROM payroll_records
		WHERE branch_id = $1 AND month = $2 AND year = $3
	`, branchID, month, year).Scan(&total)
	return total, err
}
