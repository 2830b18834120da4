package service

import (
	"context"
	"errors"
	"fmt"

	"venue-booking/internal/model"
	"venue-booking/internal/repository"
	apperrors "venue-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
)

// IdempotencyGuard writes at most one purchase (and, for tables, one booking
// and one reservation) per payment intent. The unique indexes on
// ticket_purchases.payment_intent_id and confirmed event_bookings are what
// actually hold the line; the lookup below only short-circuits the common case.
type IdempotencyGuard interface {
	EnsureSingleRecord(ctx context.Context, intentID string, amount float64, md model.BookingMetadata) (*model.RecordResult, error)
}

type IdempotencyGuardImpl struct {
	db              repository.TxBeginner
	eventRepo       repository.EventRepository
	purchaseRepo    repository.PurchaseRepository
	bookingRepo     repository.BookingRepository
	reservationRepo repository.ReservationRepository
}

func NewIdempotencyGuard(
	db repository.TxBeginner,
	eventRepo repository.EventRepository,
	purchaseRepo repository.PurchaseRepository,
	bookingRepo repository.BookingRepository,
	reservationRepo repository.ReservationRepository,
) IdempotencyGuard {
	return &IdempotencyGuardImpl{
		db:              db,
		eventRepo:       eventRepo,
		purchaseRepo:    purchaseRepo,
		bookingRepo:     bookingRepo,
		reservationRepo: reservationRepo,
	}
}

func (g *IdempotencyGuardImpl) EnsureSingleRecord(ctx context.Context, intentID string, amount float64, md model.BookingMetadata) (*model.RecordResult, error) {
	if intentID == "" {
		return nil, apperrors.ErrInvalidInput
	}

	tx, err := g.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 1. 已經寫過就直接回傳
	existing, err := g.purchaseRepo.FindByPaymentIntentID(ctx, tx, intentID)
	if err == nil {
		return &model.RecordResult{AlreadyRecorded: true, Purchase: existing}, nil
	}
	if !errors.Is(err, apperrors.ErrPurchaseNotFound) {
		return nil, err
	}

	// 2. 以資料庫中的活動為準 (日期、是否存在)
	event, err := g.eventRepo.FindByIDForUpdate(ctx, tx, md.EventID)
	if err != nil {
		return nil, err
	}

	ref := md.BookingRef
	if !IsBookingRef(ref) {
		ref = NewBookingRef()
	}
	quantity := md.Quantity
	if quantity < 1 || md.TicketType.IsTable() {
		quantity = 1
	}

	purchase := &model.TicketPurchase{
		EventID:         event.ID,
		CustomerName:    md.CustomerName,
		CustomerEmail:   md.CustomerEmail,
		CustomerPhone:   md.CustomerPhone,
		CustomerDOB:     md.CustomerDOB,
		Quantity:        quantity,
		TotalPrice:      amount,
		Status:          model.PurchaseStatusPaid,
		PaymentIntentID: &intentID,
		CouponCode:      nullableString(md.CouponCode),
		TicketType:      md.TicketType,
		BookingRef:      ref,
	}
	if md.TicketType.IsTable() {
		purchase.TableID = nullableString(md.TableID)
	}

	// 3. ON CONFLICT DO NOTHING：輸掉競賽的一方也視為已寫入
	created, err := g.purchaseRepo.Create(ctx, tx, purchase)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicatePaymentIntent) {
			winner, findErr := g.purchaseRepo.FindByPaymentIntentID(ctx, tx, intentID)
			if findErr != nil {
				winner = nil
			}
			return &model.RecordResult{AlreadyRecorded: true, Purchase: winner}, nil
		}
		return nil, err
	}

	result := &model.RecordResult{Event: event, Purchase: created}

	if md.TicketType.IsTable() {
		// 4. 桌位：確認訂位 + 賓客名單
		booking, err := g.bookingRepo.Create(ctx, tx, &model.EventBooking{
			EventID:         event.ID,
			TableID:         md.TableID,
			CustomerName:    md.CustomerName,
			CustomerEmail:   md.CustomerEmail,
			GuestPhone:      md.CustomerPhone,
			GuestDOB:        md.CustomerDOB,
			Status:          model.BookingStatusConfirmed,
			PaymentIntentID: &intentID,
			BookingRef:      ref,
		})
		if err != nil {
			return nil, err
		}
		result.Booking = booking

		eventID := event.ID
		tableID := md.TableID
		partySize := md.PartySize
		if partySize < 1 {
			partySize = 1
		}
		reservation, err := g.reservationRepo.Create(ctx, tx, &model.Reservation{
			Name:            md.CustomerName,
			Email:           md.CustomerEmail,
			Phone:           md.CustomerPhone,
			Date:            event.Date(),
			Time:            event.StartsAt.UTC().Format("15:04"),
			PartySize:       partySize,
			EventID:         &eventID,
			TableID:         &tableID,
			BookingRef:      ref,
			PaymentIntentID: &intentID,
			Status:          string(model.BookingStatusConfirmed),
			Notes:           md.TableLabel,
		})
		if err != nil {
			return nil, err
		}
		result.Reservation = reservation
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}
	return result, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
