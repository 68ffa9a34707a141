package repository

import (
	"context"
	"time"

	"washtrack-backend/internal/aggregate"
	"washtrack-backend/internal/db"
	"washtrack-backend/internal/domain"
)

type AttendanceRepository struct {
	DB *db.Postgres
}

type UpsertAttendanceInput struct {
	BranchID   int64
	EmployeeID int64
	Date       time.Time
	CheckIn    *time.Time
	CheckOut   *time.Time
	Status     domain.AttendanceStatus
}

// Upsert records attendance for an employee/day pair; a second call for the
// same day updates the existing row. The insert only matches employees of the
// given branch, and the conflict update refuses to touch a row another branch
// owns, so a stray employeeId comes back as ErrNotFound instead of writing
// across branches.
func (r AttendanceRepository) Upsert(ctx context.Context, in UpsertAttendanceInput) (*domain.AttendanceRecord, error) {
	var a domain.AttendanceRecord
	var status string
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO attendance (branch_id, employee_id, att_date, check_in, check_out, status)
		SELECT $1, e.id, $3::date, $4, $5, $6
		FROM employees e
		WHERE e.id = $2 AND e.branch_id = $1 AND e.deleted_at IS NULL
		ON CONFLICT (employee_id, att_date) DO UPDATE SET
			check_in  = COALESCE(EXCLUDED.check_in, attendance.check_in),
			check_out = COALESCE(EXCLUDED.check_out, attendance.check_out),
			status    = EXCLUDED.status
		WHERE attendance.branch_id = EXCLUDED.branch_id
		RETURNING id, branch_id, employee_id, att_date, check_in, check_out, status, created_at
	`, in.BranchID, in.EmployeeID, in.Date.Format("2006-01-02"), in.CheckIn, in.CheckOut, string(in.Status)).Scan(
		&a.ID, &a.BranchID, &a.EmployeeID, &a.Date, &a.CheckIn, &a.CheckOut, &status, &a.CreatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.Status = domain.AttendanceStatus(status)
	return &a, nil
}

// ListRange returns a branch's attendance over [from, to), most recent first,
// joined with employee names.
func (r AttendanceRepository) ListRange(ctx context.Context, branchID int64, from, to time.Time, limit int) ([]domain.AttendanceRecord, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT a.id, a.branch_id, a.employee_id, e.name, a.att_date, a.check_in, a.check_out, a.status, a.created_at
		FROM attendance a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.deleted_at IS NULL AND a.branch_id = $1
		  AND a.att_date >= $2::date AND a.att_date < $3::date
		ORDER BY a.att_date DESC, a.id DESC
		LIMIT $4
	`, branchID, from.Format("2006-01-02"), to.Format("2006-01-02"), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.AttendanceRecord
	for rows.Next() {
		var a domain.AttendanceRecord
		var status string
		if err := rows.Scan(&a.ID, &a.BranchID, &a.EmployeeID, &a.EmployeeName, &a.Date,
			&a.CheckIn, &a.CheckOut, &status, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Status = domain.AttendanceStatus(status)
		items = append(items, a)
	}
	return items, rows.Err()
}

// CountByStatus tallies attendance rows per status over [from, to), with a
// stable zero for statuses that have no rows.
func (r AttendanceRepository) CountByStatus(ctx context.Context, branchID int64, from, to time.Time) (map[domain.AttendanceStatus]int, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT status
		FROM attendance
		WHERE deleted_at IS NULL AND branch_id = $1
		  AND att_date >= $2::date AND att_date < $3::date
	`, branchID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []domain.AttendanceStatus
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return nil, err
		}
		statuses = append(statuses, domain.AttendanceStatus(status))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return aggregate.Tally(statuses,
		domain.AttendancePresent, domain.AttendanceLate, domain.AttendanceAbsent), nil
}
