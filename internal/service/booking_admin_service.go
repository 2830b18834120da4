package service

import (
	"context"

	"venue-booking/internal/model"
	"venue-booking/internal/repository"
	apperrors "venue-booking/pkg/app_errors"
	"venue-booking/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// BookingAdminService 後台訂位管理
type BookingAdminService interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.EventBooking, error)
	GuestList(ctx context.Context, eventID uuid.UUID) ([]*model.Reservation, error)
	Cancel(ctx context.Context, bookingID uuid.UUID) (*model.EventBooking, error)
	Delete(ctx context.Context, bookingID uuid.UUID) error
}

type BookingAdminServiceImpl struct {
	db              repository.TxBeginner
	repo            repository.BookingRepository
	eventRepo       repository.EventRepository
	reservationRepo repository.ReservationRepository
	availability    AvailabilityService
}

func NewBookingAdminService(
	db repository.TxBeginner,
	repo repository.BookingRepository,
	eventRepo repository.EventRepository,
	reservationRepo repository.ReservationRepository,
	availability AvailabilityService,
) BookingAdminService {
	return &BookingAdminServiceImpl{
		db:              db,
		repo:            repo,
		eventRepo:       eventRepo,
		reservationRepo: reservationRepo,
		availability:    availability,
	}
}

func (s *BookingAdminServiceImpl) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.EventBooking, error) {
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListByEvent(ctx, eventID)
}

func (s *BookingAdminServiceImpl) GuestList(ctx context.Context, eventID uuid.UUID) ([]*model.Reservation, error) {
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.reservationRepo.ListByEvent(ctx, eventID)
}

func (s *BookingAdminServiceImpl) Cancel(ctx context.Context, bookingID uuid.UUID) (*model.EventBooking, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 1. lock booking row
	booking, err := s.repo.FindByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}

	// 2. validate transition
	if !booking.Status.CanTransitionTo(model.BookingStatusCancelled) {
		return nil, apperrors.ErrInvalidBookingStatus
	}

	// 3. update status
	updated, err := s.repo.UpdateStatus(ctx, tx, bookingID, model.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.availability.Invalidate(ctx, updated.EventID)
	logger.WithComponent("service").Info("booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.String("booking_ref", updated.BookingRef))
	return updated, nil
}

func (s *BookingAdminServiceImpl) Delete(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, bookingID); err != nil {
		return err
	}
	s.availability.Invalidate(ctx, booking.EventID)
	return nil
}
