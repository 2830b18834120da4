package mocks

import (
	"context"

	"venue-booking/internal/model"

	"github.com/stretchr/testify/mock"
)

type PromoServiceMock struct {
	mock.Mock
}

func NewPromoServiceMock() *PromoServiceMock {
	return &PromoServiceMock{}
}

func (m *PromoServiceMock) ValidatePromo(ctx context.Context, code string) (*model.PromoValidation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoValidation), args.Error(1)
}

func (m *PromoServiceMock) Create(ctx context.Context, promo *model.PromoCode) (*model.PromoCode, error) {
	args := m.Called(ctx, promo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoCode), args.Error(1)
}

func (m *PromoServiceMock) Update(ctx context.Context, code string, params model.UpdatePromoParams) (*model.PromoCode, error) {
	args := m.Called(ctx, code, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoCode), args.Error(1)
}

func (m *PromoServiceMock) Redemptions(ctx context.Context, code string) ([]*model.TicketPurchase, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TicketPurchase), args.Error(1)
}
