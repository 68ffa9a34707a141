package repository

import (
	"context"

	"washtrack-backend/internal/db"
	"washtrack-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
)

type TicketRepository struct {
	DB *db.Postgres
}

type CreateTicketInput struct {
	BranchID   int64
	Title      string
	Detail     string
	Priority   string
	ReportedBy *int64
}

const ticketColumns = `id, branch_id, title, detail, priority, status, reported_by, resolved_at, created_at, updated_at`

func (r TicketRepository) Create(ctx context.Context, in CreateTicketInput) (*domain.ServiceTicket, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO service_tickets (branch_id, title, detail, priority, reported_by)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+ticketColumns+`
	`, in.BranchID, in.Title, in.Detail, in.Priority, in.ReportedBy)
	return scanTicket(row)
}

// List returns tickets newest first. A nil branchID lists across all branches.
func (r TicketRepository) List(ctx context.Context, branchID *int64, limit int) ([]domain.ServiceTicket, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM service_tickets
		WHERE deleted_at IS NULL AND ($1::bigint IS NULL OR branch_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, branchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ServiceTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

func (r TicketRepository) Get(ctx context.Context, id int64, branchID *int64) (*domain.ServiceTicket, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM service_tickets
		WHERE deleted_at IS NULL AND id = $1 AND ($2::bigint IS NULL OR branch_id = $2)
	`, id, branchID)
	t, err := scanTicket(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	comments, err := r.listComments(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Comments = comments
	return t, nil
}

// SetStatus updates a ticket's status. resolved_at is stamped on every
// transition into FIXED or CLOSED and is intentionally never cleared when a
// ticket is reopened; the old resolution time stays as an audit trail.
func (r TicketRepository) SetStatus(ctx context.Context, id int64, branchID *int64, status domain.TicketStatus) (*domain.ServiceTicket, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE service_tickets SET
			status      = $3,
			resolved_at = CASE WHEN $3 IN ('FIXED','CLOSED') THEN now() ELSE resolved_at END,
			updated_at  = now()
		WHERE deleted_at IS NULL AND id = $1 AND ($2::bigint IS NULL OR branch_id = $2)
		RETURNING `+ticketColumns+`
	`, id, branchID, string(status))
	t, err := scanTicket(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r TicketRepository) AddComment(ctx context.Context, ticketID int64, authorID *int64, author, body string) (*domain.TicketComment, error) {
	var c domain.TicketComment
	var aid pgtype.Int8
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO ticket_comments (ticket_id, author_id, author, body)
		VALUES ($1,$2,$3,$4)
		RETURNING id, ticket_id, author_id, author, body, created_at
	`, ticketID, authorID, author, body).Scan(&c.ID, &c.TicketID, &aid, &c.Author, &c.Body, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if aid.Valid {
		c.AuthorID = &aid.Int64
	}
	return &c, nil
}

// CountOpen counts unresolved tickets. A nil branchID counts across branches.
func (r TicketRepository) CountOpen(ctx context.Context, branchID *int64) (int64, error) {
	var n int64
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM service_tickets
		WHERE deleted_at IS NULL AND status IN ('OPEN','IN_PROGRESS')
		  AND ($1::bigint IS NULL OR branch_id = $1)
	`, branchID).Scan(&n)
	return n, err
}

func (r TicketRepository) listComments(ctx context.Context, ticketID int64) ([]domain.TicketComment, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, ticket_id, author_id, author, body, created_at
		FROM ticket_comments
		WHERE ticket_id = $1
		ORDER BY created_at ASC, id ASC
	`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.TicketComment
	for rows.Next() {
		var c domain.TicketComment
		var aid pgtype.Int8
		if err := rows.Scan(&c.ID, &c.TicketID, &aid, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		if aid.Valid {
			c.AuthorID = &aid.Int64
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func scanTicket(row rowScanner) (*domain.ServiceTicket, error) {
	var t domain.ServiceTicket
	var status string
	var reportedBy pgtype.Int8
	if err := row.Scan(&t.ID, &t.BranchID, &t.Title, &t.Detail, &t.Priority, &status,
		&reportedBy, &t.ResolvedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.TicketStatus(status)
	if reportedBy.Valid {
		t.ReportedBy = &reportedBy.Int64
	}
	return &t, nil
}
