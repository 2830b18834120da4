package mocks

import (
	"context"

	"venue-booking/internal/model"

	"github.com/stretchr/testify/mock"
)

type CheckoutServiceMock struct {
	mock.Mock
}

func NewCheckoutServiceMock() *CheckoutServiceMock {
	return &CheckoutServiceMock{}
}

func (m *CheckoutServiceMock) Quote(ctx context.Context, req model.QuoteRequest) (*model.PriceQuote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PriceQuote), args.Error(1)
}

func (m *CheckoutServiceMock) Checkout(ctx context.Context, req model.CheckoutRequest) (*model.CheckoutResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResult), args.Error(1)
}

func (m *CheckoutServiceMock) Finalize(ctx context.Context, intentID string) (*model.FinalizeResult, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FinalizeResult), args.Error(1)
}

func (m *CheckoutServiceMock) HandleWebhook(ctx context.Context, payload []byte, signature string) (*model.FinalizeResult, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FinalizeResult), args.Error(1)
}

func (m *CheckoutServiceMock) ReconcileIntent(ctx context.Context, intentID string, source model.ConfirmationSource) (*model.FinalizeResult, error) {
	args := m.Called(ctx, intentID, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FinalizeResult), args.Error(1)
}
