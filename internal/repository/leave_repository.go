package repository

import (
	"context"
	"time"

	"washtrack-backend/internal/db"
	"washtrack-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
)

type LeaveRepository struct {
	DB *db.Postgres
}

type CreateLeaveInput struct {
	BranchID   int64
	EmployeeID int64
	Type       string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
}

const leaveColumns = `id, branch_id, employee_id, leave_type, start_date, end_date, reason, status, approver_id, decided_at, created_at`

// Create files a leave request. The employee must belong to the branch; a
// mismatched employeeId returns ErrNotFound.
func (r LeaveRepository) Create(ctx context.Context, in CreateLeaveInput) (*domain.LeaveRequest, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO leave_requests (branch_id, employee_id, leave_type, start_date, end_date, reason)
		SELECT $1, e.id, $3, $4::date, $5::date, $6
		FROM employees e
		WHERE e.id = $2 AND e.branch_id = $1 AND e.deleted_at IS NULL
		RETURNING `+leaveColumns+`
	`, in.BranchID, in.EmployeeID, in.Type, in.StartDate.Format("2006-01-02"), in.EndDate.Format("2006-01-02"), in.Reason)
	lr, err := scanLeave(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return lr, nil
}

func (r LeaveRepository) List(ctx context.Context, branchID int64, limit int) ([]domain.LeaveRequest, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+leaveColumns+`
		FROM leave_requests
		WHERE deleted_at IS NULL AND branch_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, branchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.LeaveRequest
	for rows.Next() {
		lr, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *lr)
	}
	return items, rows.Err()
}

// Decide moves a pending request to APPROVED or REJECTED, stamping the
// approver and decision time. Only pending requests can be decided.
func (r LeaveRepository) Decide(ctx context.Context, id, branchID int64, status domain.LeaveStatus, approverID int64) (*domain.LeaveRequest, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE leave_requests SET
			status      = $3,
			approver_id = $4,
			decided_at  = now()
		WHERE deleted_at IS NULL AND id = $1 AND branch_id = $2 AND status = 'PENDING'
		RETURNING `+leaveColumns+`
	`, id, branchID, string(status), approverID)
	lr, err := scanLeave(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return lr, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLeave(row rowScanner) (*domain.LeaveRequest, error) {
	var lr domain.LeaveRequest
	var status string
	var approverID pgtype.Int8
	if err := row.Scan(&lr.ID, &lr.BranchID, &lr.EmployeeID, &lr.Type, &lr.StartDate, &lr.EndDate,
		&lr.Reason, &status, &approverID, &lr.DecidedAt, &lr.CreatedAt); err != nil {
		return nil, err
	}
	lr.Status = domain.LeaveStatus(status)
	if approverID.Valid {
		lr.ApproverID = &approverID.Int64
	}
	return &lr, nil
}
