package repository

import (
	"context"

	"washtrack-backend/internal/db"
	"washtrack-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// singletonRow is the fixed primary key for the per-deployment config rows.
const singletonRow = 1

type ConfigRepository struct {
	DB *db.Postgres
}

// GetSiteConfig materializes the singleton with defaults on first read; a GET
// never sees a missing row. The conditional insert makes concurrent first
// reads race-safe.
func (r ConfigRepository) GetSiteConfig(ctx context.Context) (*domain.SiteConfig, error) {
	if _, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO site_config (id, site_name, tagline)
		VALUES ($1, 'WashTrack', 'Car wash franchise back-office')
		ON CONFLICT (id) DO NOTHING
	`, singletonRow); err != nil {
		return nil, err
	}

	var c domain.SiteConfig
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, site_name, tagline, contact_email, contact_phone, address, updated_at
		FROM site_config
		WHERE id = $1
	`, singletonRow).Scan(&c.ID, &c.SiteName, &c.Tagline, &c.ContactEmail, &c.ContactPhone, &c.Address, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r ConfigRepository) SaveSiteConfig(ctx context.Context, c domain.SiteConfig) (*domain.SiteConfig, error) {
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO site_config (id, site_name, tagline, contact_email, contact_phone, address, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6, now())
		ON CONFLICT (id) DO UPDATE SET
			site_name     = EXCLUDED.site_name,
			tagline       = EXCLUDED.tagline,
			contact_email = EXCLUDED.contact_email,
			contact_phone = EXCLUDED.contact_phone,
			address       = EXCLUDED.address,
			updated_at    = now()
		RETURNING id, site_name, tagline, contact_email, contact_phone, address, updated_at
	`, singletonRow, c.SiteName, c.Tagline, c.ContactEmail, c.ContactPhone, c.Address).Scan(
		&c.ID, &c.SiteName, &c.Tagline, &c.ContactEmail, &c.ContactPhone, &c.Address, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetRoiConfig follows the same get-or-default-and-persist shape as the site
// config.
func (r ConfigRepository) GetRoiConfig(ctx context.Context) (*domain.RoiConfig, error) {
	if _, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO roi_config (id) VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, singletonRow); err != nil {
		return nil, err
	}

	var c domain.RoiConfig
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, investment_amount, monthly_target, break_even_months, updated_at
		FROM roi_config
		WHERE id = $1
	`, singletonRow).Scan(&c.ID, &c.InvestmentAmount, &c.MonthlyTarget, &c.BreakEvenMonths, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type SaveRoiConfigInput struct {
	InvestmentAmount decimal.Decimal
	MonthlyTarget    decimal.Decimal
	BreakEvenMonths  int
}

func (r ConfigRepository) SaveRoiConfig(ctx context.Context, in SaveRoiConfigInput) (*domain.RoiConfig, error) {
	var c domain.RoiConfig
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO roi_config (id, investment_amount, monthly_target, break_even_months, updated_at)
		VALUES ($1,$2,$3,$4, now())
		ON CONFLICT (id) DO UPDATE SET
			investment_amount = EXCLUDED.investment_amount,
			monthly_target    = EXCLUDED.monthly_target,
			break_even_months = EXCLUDED.break_even_months,
			updated_at        = now()
		RETURNING id, investment_amount, monthly_target, break_even_months, updated_at
	`, singletonRow, in.InvestmentAmount, in.MonthlyTarget, in.BreakEvenMonths).Scan(
		&c.ID, &c.InvestmentAmount, &c.MonthlyTarget, &c.BreakEvenMonths, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type ThemeRepository struct {
	DB *db.Postgres
}

func (r ThemeRepository) Get(ctx context.Context, branchID int64) (*domain.BranchTheme, error) {
	var t domain.BranchTheme
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT branch_id, primary_color, secondary_color, accent_color, logo_url, updated_at
		FROM branch_themes
		WHERE branch_id = $1
	`, branchID).Scan(&t.BranchID, &t.PrimaryColor, &t.SecondaryColor, &t.AccentColor, &t.LogoURL, &t.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r ThemeRepository) Save(ctx context.Context, t domain.BranchTheme) (*domain.BranchTheme, error) {
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO branch_themes (branch_id, primary_color, secondary_color, accent_color, logo_url, updated_at)
		VALUES ($1,$2,$3,$4,$5, now())
		ON CONFLICT (branch_id) DO UPDATE SET
			primary_color   = EXCLUDED.primary_color,
			secondary_color = EXCLUDED.secondary_color,
			accent_color    = EXCLUDED.accent_color,
			logo_url        = EXCLUDED.logo_url,
			updated_at      = now()
		RETURNING branch_id, primary_color, secondary_color, accent_color, logo_url, updated_at
	`, t.BranchID, t.PrimaryColor, t.SecondaryColor, t.AccentColor, t.LogoURL).Scan(
		&t.BranchID, &t.PrimaryColor, &t.SecondaryColor, &t.AccentColor, &t.LogoURL, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type BannerRepository struct {
	DB *db.Postgres
}

type CreateBannerInput struct {
	BranchID  *int64
	Title     string
	ImageURL  string
	LinkURL   string
	SortOrder int
}

func (r BannerRepository) Create(ctx context.Context, in CreateBannerInput) (*domain.Banner, error) {
	var b domain.Banner
	var bid pgtype.Int8
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO banners (branch_id, title, image_url, link_url, sort_order)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, branch_id, title, image_url, link_url, sort_order, is_active, created_at
	`, in.BranchID, in.Title, in.ImageURL, in.LinkURL, in.SortOrder).Scan(
		&b.ID, &bid, &b.Title, &b.ImageURL, &b.LinkURL, &b.SortOrder, &b.IsActive, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if bid.Valid {
		b.BranchID = &bid.Int64
	}
	return &b, nil
}

// ListActive returns global banners plus the branch's own, ordered for
// display. A nil branchID returns only the global set.
func (r BannerRepository) ListActive(ctx context.Context, branchID *int64) ([]domain.Banner, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, branch_id, title, image_url, link_url, sort_order, is_active, created_at
		FROM banners
		WHERE deleted_at IS NULL AND is_active
		  AND (branch_id IS NULL OR branch_id = $1)
		ORDER BY sort_order ASC, id ASC
	`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Banner
	for rows.Next() {
		var b domain.Banner
		var bid pgtype.Int8
		if err := rows.Scan(&b.ID, &bid, &b.Title, &b.ImageURL, &b.LinkURL, &b.SortOrder, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, err
		}
		if bid.Valid {
			b.BranchID = &bid.Int64
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

type UpdateBannerInput struct {
	Title     *string
	ImageURL  *string
	LinkURL   *string
	SortOrder *int
	IsActive  *bool
}

func (r BannerRepository) Update(ctx context.Context, id int64, in UpdateBannerInput) (*domain.Banner, error) {
	var b domain.Banner
	var bid pgtype.Int8
	err := r.DB.Pool.QueryRow(ctx, `
		UPDATE banners SET
			title      = COALESCE($2, title),
			image_url  = COALESCE($3, image_url),
			link_url   = COALESCE($4, link_url),
			sort_order = COALESCE($5, sort_order),
			is_active  = COALESCE($6, is_active)
		WHERE deleted_at IS NULL AND id = $1
		RETURNING id, branch_id, title, image_url, link_url, sort_order, is_active, created_at
	`, id, in.Title, in.ImageURL, in.LinkURL, in.SortOrder, in.IsActive).Scan(
		&b.ID, &bid, &b.Title, &b.ImageURL, &b.LinkURL, &b.SortOrder, &b.IsActive, &b.CreatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if bid.Valid {
		b.BranchID = &bid.Int64
	}
	return &b, nil
}
