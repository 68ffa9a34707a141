package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCouponNotFound = errors.New("coupon not found")
	ErrCouponUsed     = errors.New("coupon already used")
	ErrCouponExpired  = errors.New("coupon expired")
)

// CouponStore is the storage contract for redemption. Redeem must be a
// single conditional update on (code, ACTIVE, unexpired) so that concurrent
// scans of the same code cannot both succeed.
type CouponStore interface {
	Redeem(ctx context.Context, code string, now time.Time) (bool, error)
	GetByCode(ctx context.Context, code string) (*domain.CustomerCoupon, error)
}

type LoyaltyService struct {
	Coupons CouponStore
	Now     func() time.Time
}

// Discount is what a successful scan hands back to the point of sale.
type Discount struct {
	Code          string
	TemplateName  string
	DiscountType  domain.DiscountType
	DiscountValue decimal.Decimal
	UsedAt        time.Time
}

// RedeemCoupon drives the coupon's only state machine:
// ACTIVE -> USED (terminal) or ACTIVE -> EXPIRED (terminal, time-derived).
// The transition itself is the store's compare-and-swap; this method only
// classifies the outcome.
func (s LoyaltyService) RedeemCoupon(ctx context.Context, code string) (*Discount, error) {
	now := s.now()
	won, err := s.Coupons.Redeem(ctx, code, now)
	if err != nil {
		return nil, err
	}
	if !won {
		coupon, err := s.Coupons.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrCouponNotFound
			}
			return nil, err
		}
		return nil, ClassifyRedeemFailure(coupon, now)
	}

	coupon, err := s.Coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	d := &Discount{
		Code:   coupon.Code,
		UsedAt: now,
	}
	if coupon.UsedAt != nil {
		d.UsedAt = *coupon.UsedAt
	}
	if coupon.Template != nil {
		d.TemplateName = coupon.Template.Name
		d.DiscountType = coupon.Template.DiscountType
		d.DiscountValue = coupon.Template.DiscountValue
	}
	return d, nil
}

// ClassifyRedeemFailure explains why the conditional update matched no row.
// Expiry is time-derived: a coupon whose stored status still says ACTIVE but
// whose expires_at has passed counts as expired, not redeemable. An ACTIVE,
// unexpired coupon can only have lost the swap to a concurrent scan, which
// from the caller's view is the same as already used.
func ClassifyRedeemFailure(coupon *domain.CustomerCoupon, now time.Time) error {
	switch {
	case coupon == nil:
		return ErrCouponNotFound
	case coupon.Status == domain.CouponUsed:
		return ErrCouponUsed
	case coupon.Status == domain.CouponExpired || now.After(coupon.ExpiresAt):
		return ErrCouponExpired
	default:
		return ErrCouponUsed
	}
}

// NewCouponCode generates a unique scannable code. Uniqueness is also
// enforced by the customer_coupons.code constraint.
func NewCouponCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func (s LoyaltyService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
