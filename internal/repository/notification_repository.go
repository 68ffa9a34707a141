package repository

import (
	"context"

	"washtrack-backend/internal/db"
	"washtrack-backend/internal/domain"
)

type NotificationRepository struct {
	DB *db.Postgres
}

type CreateNotificationInput struct {
	BranchID int64
	Title    string
	Message  string
	Type     domain.NotificationType
}

// Create targets one branch; an unknown branch id returns ErrNotFound rather
// than tripping the foreign key.
func (r NotificationRepository) Create(ctx context.Context, in CreateNotificationInput) (*domain.Notification, error) {
	var n domain.Notification
	var typ string
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO notifications (branch_id, title, message, type)
		SELECT b.id, $2, $3, $4
		FROM branches b
		WHERE b.id = $1 AND b.deleted_at IS NULL
		RETURNING id, branch_id, title, message, type, is_read, created_at
	`, in.BranchID, in.Title, in.Message, string(in.Type)).Scan(
		&n.ID, &n.BranchID, &n.Title, &n.Message, &typ, &n.IsRead, &n.CreatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	n.Type = domain.NotificationType(typ)
	return &n, nil
}

// Broadcast fans one notification out to every active branch with a single
// batched insert and returns the number of rows created. Zero active
// branches is a valid zero-count outcome, not an error.
func (r NotificationRepository) Broadcast(ctx context.Context, title, message string, typ domain.NotificationType) (int64, error) {
	tag, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO notifications (branch_id, title, message, type)
		SELECT id, $1, $2, $3
		FROM branches
		WHERE deleted_at IS NULL AND is_active
	`, title, message, string(typ))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r NotificationRepository) List(ctx context.Context, branchID int64, limit int) ([]domain.Notification, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, branch_id, title, message, type, is_read, created_at
		FROM notifications
		WHERE deleted_at IS NULL AND branch_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, branchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var typ string
		if err := rows.Scan(&n.ID, &n.BranchID, &n.Title, &n.Message, &typ, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = domain.NotificationType(typ)
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r NotificationRepository) MarkRead(ctx context.Context, id, branchID int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE
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

func (r NotificationRepository) CountUnread(ctx context.Context, branchID int64) (int64, error) {
	var n int64
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM notifications
		WHERE deleted_at IS NULL AND branch_id = $1 AND is_read = FALSE
	`, branchID).Scan(&n)
	return n, err
}
