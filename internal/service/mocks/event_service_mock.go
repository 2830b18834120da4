package mocks

import (
	"context"

	"venue-booking/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type EventServiceMock struct {
	mock.Mock
}

func NewEventServiceMock() *EventServiceMock {
	return &EventServiceMock{}
}

func (m *EventServiceMock) GetByID(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) GetSummary(ctx context.Context, eventID uuid.UUID) (*model.EventSummary, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventSummary), args.Error(1)
}

func (m *EventServiceMock) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventServiceMock) Update(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	args := m.Called(ctx, eventID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

type AvailabilityServiceMock struct {
	mock.Mock
}

func NewAvailabilityServiceMock() *AvailabilityServiceMock {
	return &AvailabilityServiceMock{}
}

func (m *AvailabilityServiceMock) ForEvent(ctx context.Context, eventID uuid.UUID) []*model.TableAvailability {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*model.TableAvailability)
}

func (m *AvailabilityServiceMock) Invalidate(ctx context.Context, eventID uuid.UUID) {
	m.Called(ctx, eventID)
}
