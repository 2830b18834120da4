package service

import (
	"context"
	"testing"
	"time"

	"venue-booking/internal/model"
	apperrors "venue-booking/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromoFixture(now time.Time) (*memStore, *PromoServiceImpl) {
	store := newMemStore()
	svc := NewPromoService(memPromos{store}, memPurchases{store}).(*PromoServiceImpl)
	svc.now = func() time.Time { return now }
	return store, svc
}

func TestValidatePromo(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(24 * time.Hour)

	store, svc := newPromoFixture(now)
	store.addPromo(&model.PromoCode{Code: "VIP10", DiscountPercent: 10, IsActive: true})
	store.addPromo(&model.PromoCode{Code: "OFF", DiscountPercent: 50, IsActive: false})
	store.addPromo(&model.PromoCode{Code: "OLD", DiscountPercent: 20, IsActive: true, ExpiresAt: &past})
	store.addPromo(&model.PromoCode{Code: "SOON", DiscountPercent: 15, IsActive: true, ExpiresAt: &future})

	tests := []struct {
		code     string
		valid    bool
		message  string
		discount float64
	}{
		{"VIP10", true, model.PromoMessageValid, 10},
		{"  vip10 ", true, model.PromoMessageValid, 10},
		{"SOON", true, model.PromoMessageValid, 15},
		{"OFF", false, model.PromoMessageInactive, 0},
		{"OLD", false, model.PromoMessageExpired, 0},
		{"NOPE", false, model.PromoMessageInvalid, 0},
		{"", false, model.PromoMessageInvalid, 0},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			v, err := svc.ValidatePromo(context.Background(), tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, v.Valid)
			assert.Equal(t, tt.message, v.Message)
			assert.Equal(t, tt.discount, v.DiscountPercent)
		})
	}
}

func TestPromoAdmin(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	_, svc := newPromoFixture(now)

	created, err := svc.Create(context.Background(), &model.PromoCode{Code: " summer ", DiscountPercent: 25, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "SUMMER", created.Code)

	_, err = svc.Create(context.Background(), &model.PromoCode{Code: "summer", DiscountPercent: 5})
	assert.ErrorIs(t, err, apperrors.ErrPromoExists)

	_, err = svc.Create(context.Background(), &model.PromoCode{Code: "BIG", DiscountPercent: 101})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	off := false
	updated, err := svc.Update(context.Background(), "SUMMER", model.UpdatePromoParams{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	bad := -1.0
	_, err = svc.Update(context.Background(), "SUMMER", model.UpdatePromoParams{DiscountPercent: &bad})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.Update(context.Background(), "MISSING", model.UpdatePromoParams{IsActive: &off})
	assert.ErrorIs(t, err, apperrors.ErrPromoNotFound)
}

func TestPromoRedemptions(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	store, svc := newPromoFixture(now)
	store.addPromo(&model.PromoCode{Code: "VIP10", DiscountPercent: 10, IsActive: true})

	code := "VIP10"
	store.purchases = append(store.purchases,
		&model.TicketPurchase{BookingRef: "RST-AAAAAA", CouponCode: &code},
		&model.TicketPurchase{BookingRef: "RST-BBBBBB", CouponCode: &code},
		&model.TicketPurchase{BookingRef: "RST-CCCCCC"},
	)

	got, err := svc.Redemptions(context.Background(), "vip10")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.Redemptions(context.Background(), "NOPE")
	assert.ErrorIs(t, err, apperrors.ErrPromoNotFound)
}
