package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"
	"washtrack-backend/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCouponStore mimics the repository's conditional update: Redeem succeeds
// only for an ACTIVE, unexpired coupon, atomically under a mutex.
type memCouponStore struct {
	mu      sync.Mutex
	coupons map[string]*domain.CustomerCoupon
}

func newMemCouponStore(coupons ...*domain.CustomerCoupon) *memCouponStore {
	s := &memCouponStore{coupons: make(map[string]*domain.CustomerCoupon)}
	for _, c := range coupons {
		s.coupons[c.Code] = c
	}
	return s
}

func (s *memCouponStore) Redeem(_ context.Context, code string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coupons[code]
	if !ok || c.Status != domain.CouponActive || !c.ExpiresAt.After(now) {
		return false, nil
	}
	c.Status = domain.CouponUsed
	usedAt := now
	c.UsedAt = &usedAt
	return true, nil
}

func (s *memCouponStore) GetByCode(_ context.Context, code string) (*domain.CustomerCoupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coupons[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func activeCoupon(code string, expiresAt time.Time) *domain.CustomerCoupon {
	return &domain.CustomerCoupon{
		ID:         1,
		TemplateID: 1,
		CustomerID: 7,
		Code:       code,
		Status:     domain.CouponActive,
		ExpiresAt:  expiresAt,
		Template: &domain.CouponTemplate{
			ID:            1,
			Name:          "Free Wash",
			DiscountType:  domain.DiscountPercent,
			DiscountValue: decimal.NewFromInt(100),
		},
	}
}

func TestRedeemCoupon_Succeeds(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := newMemCouponStore(activeCoupon("WASH123", now.Add(24*time.Hour)))
	svc := service.LoyaltyService{Coupons: store, Now: func() time.Time { return now }}

	d, err := svc.RedeemCoupon(context.Background(), "WASH123")

	require.NoError(t, err)
	assert.Equal(t, "WASH123", d.Code)
	assert.Equal(t, "Free Wash", d.TemplateName)
	assert.Equal(t, domain.DiscountPercent, d.DiscountType)
	assert.Equal(t, now, d.UsedAt)
}

func TestRedeemCoupon_SecondScanFails(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := newMemCouponStore(activeCoupon("WASH123", now.Add(24*time.Hour)))
	svc := service.LoyaltyService{Coupons: store, Now: func() time.Time { return now }}

	_, err := svc.RedeemCoupon(context.Background(), "WASH123")
	require.NoError(t, err)

	_, err = svc.RedeemCoupon(context.Background(), "WASH123")
	assert.ErrorIs(t, err, service.ErrCouponUsed)
}

func TestRedeemCoupon_ConcurrentScans_ExactlyOneWins(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := newMemCouponStore(activeCoupon("WASH123", now.Add(24*time.Hour)))
	svc := service.LoyaltyService{Coupons: store, Now: func() time.Time { return now }}

	const scans = 16
	errs := make(chan error, scans)
	var wg sync.WaitGroup
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RedeemCoupon(context.Background(), "WASH123")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins, losses := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			assert.ErrorIs(t, err, service.ErrCouponUsed)
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, scans-1, losses)
}

func TestRedeemCoupon_Expired(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	// Status still says ACTIVE but the expiry has passed; expiry is
	// time-derived, so the scan must fail as expired, not succeed.
	store := newMemCouponStore(activeCoupon("OLD1", now.Add(-time.Hour)))
	svc := service.LoyaltyService{Coupons: store, Now: func() time.Time { return now }}

	_, err := svc.RedeemCoupon(context.Background(), "OLD1")

	assert.ErrorIs(t, err, service.ErrCouponExpired)
}

func TestRedeemCoupon_UnknownCode(t *testing.T) {
	store := newMemCouponStore()
	svc := service.LoyaltyService{Coupons: store}

	_, err := svc.RedeemCoupon(context.Background(), "NOPE")

	assert.ErrorIs(t, err, service.ErrCouponNotFound)
}

func TestClassifyRedeemFailure(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		coupon *domain.CustomerCoupon
		want   error
	}{
		{
			name:   "missing coupon",
			coupon: nil,
			want:   service.ErrCouponNotFound,
		},
		{
			name:   "already used",
			coupon: &domain.CustomerCoupon{Status: domain.CouponUsed, ExpiresAt: now.Add(time.Hour)},
			want:   service.ErrCouponUsed,
		},
		{
			name:   "marked expired",
			coupon: &domain.CustomerCoupon{Status: domain.CouponExpired, ExpiresAt: now.Add(time.Hour)},
			want:   service.ErrCouponExpired,
		},
		{
			name:   "active but past expiry",
			coupon: &domain.CustomerCoupon{Status: domain.CouponActive, ExpiresAt: now.Add(-time.Minute)},
			want:   service.ErrCouponExpired,
		},
		{
			name:   "active and unexpired, lost the race",
			coupon: &domain.CustomerCoupon{Status: domain.CouponActive, ExpiresAt: now.Add(time.Hour)},
			want:   service.ErrCouponUsed,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, service.ClassifyRedeemFailure(tc.coupon, now), tc.want)
		})
	}
}

func TestNewCouponCode(t *testing.T) {
	a := service.NewCouponCode()
	b := service.NewCouponCode()

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	assert.Equal(t, strings.ToUpper(a), a)
	assert.NotContains(t, a, "-")
}
