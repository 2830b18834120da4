package mocks

import (
	"context"

	"venue-booking/internal/model"
	"venue-booking/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type BookingAdminServiceMock struct {
	mock.Mock
}

func NewBookingAdminServiceMock() *BookingAdminServiceMock {
	return &BookingAdminServiceMock{}
}

func (m *BookingAdminServiceMock) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.EventBooking, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.EventBooking), args.Error(1)
}

func (m *BookingAdminServiceMock) GuestList(ctx context.Context, eventID uuid.UUID) ([]*model.Reservation, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reservation), args.Error(1)
}

func (m *BookingAdminServiceMock) Cancel(ctx context.Context, bookingID uuid.UUID) (*model.EventBooking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventBooking), args.Error(1)
}

func (m *BookingAdminServiceMock) Delete(ctx context.Context, bookingID uuid.UUID) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

type ReconciliationServiceMock struct {
	mock.Mock
}

func NewReconciliationServiceMock() *ReconciliationServiceMock {
	return &ReconciliationServiceMock{}
}

func (m *ReconciliationServiceMock) ListOpen(ctx context.Context) ([]*model.ReconciliationIssue, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ReconciliationIssue), args.Error(1)
}

func (m *ReconciliationServiceMock) Retry(ctx context.Context, intentID string) (*model.FinalizeResult, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FinalizeResult), args.Error(1)
}

func (m *ReconciliationServiceMock) RetryPending(ctx context.Context) (service.RetrySummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.RetrySummary), args.Error(1)
}

var (
	_ service.BookingAdminService   = (*BookingAdminServiceMock)(nil)
	_ service.ReconciliationService = (*ReconciliationServiceMock)(nil)
	_ service.CheckoutService       = (*CheckoutServiceMock)(nil)
	_ service.EventService          = (*EventServiceMock)(nil)
	_ service.AvailabilityService   = (*AvailabilityServiceMock)(nil)
	_ service.PromoService          = (*PromoServiceMock)(nil)
)
