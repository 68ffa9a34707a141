package repository

import (
	"context"
	"time"

	"washtrack-backend/internal/aggregate"
	"washtrack-backend/internal/db"
	"washtrack-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type LedgerRepository struct {
	DB *db.Postgres
}

type CreateLedgerInput struct {
	BranchID   int64
	Kind       domain.LedgerKind
	Title      string
	Amount     decimal.Decimal
	CategoryID *int64
	Date       time.Time
	Note       string
	CreatedBy  *int64
}

type UpdateLedgerInput struct {
	Title      *string
	Amount     *decimal.Decimal
	CategoryID *int64
	Date       *time.Time
	Note       *string
}

func (r LedgerRepository) Create(ctx context.Context, in CreateLedgerInput) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var categoryID, createdBy pgtype.Int8
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO ledger_entries (branch_id, kind, title, amount, category_id, entry_date, note, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, branch_id, kind, title, amount, category_id, entry_date, note, created_by, created_at
	`, in.BranchID, string(in.Kind), in.Title, in.Amount, in.CategoryID, in.Date.Format("2006-01-02"), in.Note, in.CreatedBy).Scan(
		&e.ID, &e.BranchID, (*string)(&e.Kind), &e.Title, &e.Amount, &categoryID, &e.Date, &e.Note, &createdBy, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		e.CategoryID = &categoryID.Int64
	}
	if createdBy.Valid {
		e.CreatedBy = &createdBy.Int64
	}
	return &e, nil
}

// List returns the most recent entries for a branch and kind, newest first.
func (r LedgerRepository) List(ctx context.Context, branchID int64, kind domain.LedgerKind, limit int) ([]domain.LedgerEntry, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT le.id, le.branch_id, le.kind, le.title, le.amount, le.category_id,
		       COALESCE(ec.name, ''), le.entry_date, le.note, le.created_by, le.created_at
		FROM ledger_entries le
		LEFT JOIN expense_categories ec ON ec.id = le.category_id
		WHERE le.deleted_at IS NULL AND le.branch_id = $1 AND le.kind = $2
		ORDER BY le.entry_date DESC, le.id DESC
		LIMIT $3
	`, branchID, string(kind), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var categoryID, createdBy pgtype.Int8
		if err := rows.Scan(&e.ID, &e.BranchID, (*string)(&e.Kind), &e.Title, &e.Amount, &categoryID,
			&e.Category, &e.Date, &e.Note, &createdBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		if categoryID.Valid {
			e.CategoryID = &categoryID.Int64
		}
		if createdBy.Valid {
			e.CreatedBy = &createdBy.Int64
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r LedgerRepository) Update(ctx context.Context, id, branchID int64, in UpdateLedgerInput) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var categoryID, createdBy pgtype.Int8
	var date any
	if in.Date != nil {
		date = in.Date.Format("2006-01-02")
	}
	err := r.DB.Pool.QueryRow(ctx, `
		UPDATE ledger_entries SET
			title       = COALESCE($3, title),
			amount      = COALESCE($4, amount),
			category_id = COALESCE($5, category_id),
			entry_date  = COALESCE($6::date, entry_date),
			note        = COALESCE($7, note)
		WHERE deleted_at IS NULL AND id = $1 AND branch_id = $2
		RETURNING id, branch_id, kind, title, amount, category_id, entry_date, note, created_by, created_at
	`, id, branchID, in.Title, in.Amount, in.CategoryID, date, in.Note).Scan(
		&e.ID, &e.BranchID, (*string)(&e.Kind), &e.Title, &e.Amount, &categoryID, &e.Date, &e.Note, &createdBy, &e.CreatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if categoryID.Valid {
		e.CategoryID = &categoryID.Int64
	}
	if createdBy.Valid {
		e.CreatedBy = &createdBy.Int64
	}
	return &e, nil
}

func (r LedgerRepository) SoftDelete(ctx context.Context, id, branchID int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE ledger_entries SET deleted_at = now()
		WHERE deleted_at IS NULL AND id = $1 AND branch_id = $2
	`, id, branchID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SumRange totals amounts over [from, to) for one kind. A nil branchID sums
// across all branches. No matching rows yields zero.
func (r LedgerRepository) SumRange(ctx context.Context, branchID *int64, kind domain.LedgerKind, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE deleted_at IS NULL AND kind = $1
		  AND ($2::bigint IS NULL OR branch_id = $2)
		  AND entry_date >= $3::date AND entry_date < $4::date
	`, string(kind), branchID, from.Format("2006-01-02"), to.Format("2006-01-02")).Scan(&total)
	return total, err
}

// MonthlySums groups income and expense totals per calendar month over
// [from, to). Months without rows are absent; callers zero-fill.
func (r LedgerRepository) MonthlySums(ctx context.Context, branchID *int64, from, to time.Time) ([]aggregate.MonthlySum, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT EXTRACT(YEAR FROM month)::int, EXTRACT(MONTH FROM month)::int, income, expense
		FROM (
			SELECT date_trunc('month', entry_date) AS month,
			       COALESCE(SUM(amount) FILTER (WHERE kind = 'income'), 0)  AS income,
			       COALESCE(SUM(amount) FILTER (WHERE kind = 'expense'), 0) AS expense
			FROM ledger_entries
			WHERE deleted_at IS NULL
			  AND ($1::bigint IS NULL OR branch_id = $1)
			  AND entry_date >= $2::date AND entry_date < $3::date
			GROUP BY 1
		) m
		ORDER BY month ASC
	`, branchID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sums []aggregate.MonthlySum
	for rows.Next() {
		var s aggregate.MonthlySum
		var month int
		if err := rows.Scan(&s.Year, &month, &s.Income, &s.Expense); err != nil {
			return nil, err
		}
		s.Month = time.Month(month)
		sums = append(sums, s)
	}
	return sums, rows.Err()
}
