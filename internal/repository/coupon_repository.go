package repository

import (
	"context"
	"time"

	"washtrack-backend/internal/db"
	"washtrack-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type CouponRepository struct {
	DB *db.Postgres
}

type CreateTemplateInput struct {
	Name          string
	DiscountType  domain.DiscountType
	DiscountValue decimal.Decimal
	ValidDays     int
}

func (r CouponRepository) CreateTemplate(ctx context.Context, in CreateTemplateInput) (*domain.CouponTemplate, error) {
	var t domain.CouponTemplate
	var typ string
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO coupon_templates (name, discount_type, discount_value, valid_days)
		VALUES ($1,$2,$3,$4)
		RETURNING id, name, discount_type, discount_value, valid_days, created_at
	`, in.Name, string(in.DiscountType), in.DiscountValue, in.ValidDays).Scan(
		&t.ID, &t.Name, &typ, &t.DiscountValue, &t.ValidDays, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.DiscountType = domain.DiscountType(typ)
	return &t, nil
}

func (r CouponRepository) ListTemplates(ctx context.Context) ([]domain.CouponTemplate, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, discount_type, discount_value, valid_days, created_at
		FROM coupon_templates
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CouponTemplate
	for rows.Next() {
		var t domain.CouponTemplate
		var typ string
		if err := rows.Scan(&t.ID, &t.Name, &typ, &t.DiscountValue, &t.ValidDays, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.DiscountType = domain.DiscountType(typ)
		items = append(items, t)
	}
	return items, rows.Err()
}

// Issue creates one redeemable coupon from a template. The caller supplies
// the unique code; expiry derives from the template's valid_days.
func (r CouponRepository) Issue(ctx context.Context, templateID, customerID int64, code string) (*domain.CustomerCoupon, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO customer_coupons (template_id, customer_id, code, expires_at)
		SELECT $1, $2, $3, now() + make_interval(days => valid_days)
		FROM coupon_templates
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id, template_id, customer_id, code, status, expires_at, used_at, created_at
	`, templateID, customerID, code)
	c, err := scanCoupon(row)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetByCode loads a coupon together with its template's discount terms.
func (r CouponRepository) GetByCode(ctx context.Context, code string) (*domain.CustomerCoupon, error) {
	var c domain.CustomerCoupon
	var t domain.CouponTemplate
	var status, discountType string
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT cc.id, cc.template_id, cc.customer_id, cc.code, cc.status, cc.expires_at, cc.used_at, cc.created_at,
		       ct.id, ct.name, ct.discount_type, ct.discount_value, ct.valid_days, ct.created_at
		FROM customer_coupons cc
		JOIN coupon_templates ct ON ct.id = cc.template_id
		WHERE cc.code = $1
	`, code).Scan(
		&c.ID, &c.TemplateID, &c.CustomerID, &c.Code, &status, &c.ExpiresAt, &c.UsedAt, &c.CreatedAt,
		&t.ID, &t.Name, &discountType, &t.DiscountValue, &t.ValidDays, &t.CreatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.Status = domain.CouponStatus(status)
	t.DiscountType = domain.DiscountType(discountType)
	c.Template = &t
	return &c, nil
}

// Redeem is the compare-and-swap at the heart of coupon scanning: a single
// conditional update keyed by the unique code. Two concurrent scans cannot
// both match status='ACTIVE', so exactly one wins. A zero row count means the
// coupon was missing, already used, or expired; the caller classifies which.
func (r CouponRepository) Redeem(ctx context.Context, code string, now time.Time) (bool, error) {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE customer_coupons SET status = 'USED', used_at = $2
		WHERE code = $1 AND status = 'ACTIVE' AND expires_at > $2
	`, code, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r CouponRepository) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]domain.CustomerCoupon, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, template_id, customer_id, code, status, expires_at, used_at, created_at
		FROM customer_coupons
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CustomerCoupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func scanCoupon(row rowScanner) (*domain.CustomerCoupon, error) {
	var c domain.CustomerCoupon
	var status string
	if err := row.Scan(&c.ID, &c.TemplateID, &c.CustomerID, &c.Code, &status,
		&c.ExpiresAt, &c.UsedAt, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Status = domain.CouponStatus(status)
	return &c, nil
}
