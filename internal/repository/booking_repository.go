package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venue-booking/internal/model"
	apperrors "venue-booking/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.EventBooking, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.EventBooking, error)
	ConfirmedTableIDs(ctx context.Context, eventID uuid.UUID) ([]string, error)
	IsTableConfirmed(ctx context.Context, eventID uuid.UUID, tableID string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, booking *model.EventBooking) (*model.EventBooking, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.EventBooking, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.BookingStatus) (*model.EventBooking, error)
}

type BookingRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &BookingRepositoryImpl{
		pool: pool,
	}
}

const bookingColumns = `id, event_id, table_id, customer_name, customer_email, guest_phone,
		guest_dob, status, payment_intent_id, booking_ref, created_at, updated_at`

func scanBooking(row rowScanner) (*model.EventBooking, error) {
	var booking model.EventBooking
	err := row.Scan(
		&booking.ID,
		&booking.EventID,
		&booking.TableID,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.GuestPhone,
		&booking.GuestDOB,
		&booking.Status,
		&booking.PaymentIntentID,
		&booking.BookingRef,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// Create inserts the booking inside tx. A second confirmed booking for the
// same (event, table) violates the partial unique index and maps to
// ErrTableUnavailable.
func (r *BookingRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, booking *model.EventBooking) (*model.EventBooking, error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	query := `
		INSERT INTO event_bookings (
			id, event_id, table_id, customer_name, customer_email, guest_phone,
			guest_dob, status, payment_intent_id, booking_ref
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + bookingColumns

	created, err := scanBooking(tx.QueryRow(ctx, query,
		booking.ID, booking.EventID, booking.TableID, booking.CustomerName, booking.CustomerEmail,
		booking.GuestPhone, booking.GuestDOB, booking.Status, booking.PaymentIntentID, booking.BookingRef,
	))
	if err != nil {
		if isUniqueViolation(err, constraintConfirmedTable) {
			return nil, apperrors.ErrTableUnavailable
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	return created, nil
}

func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.EventBooking, error) {
	query := `SELECT ` + bookingColumns + ` FROM event_bookings WHERE id = $1`
	return scanBooking(r.pool.QueryRow(ctx, query, id))
}

func (r *BookingRepositoryImpl) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.EventBooking, error) {
	query := `SELECT ` + bookingColumns + ` FROM event_bookings WHERE id = $1 FOR UPDATE`
	return scanBooking(tx.QueryRow(ctx, query, id))
}

func (r *BookingRepositoryImpl) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.EventBooking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM event_bookings
		WHERE event_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*model.EventBooking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

// ConfirmedTableIDs returns the tables holding a confirmed booking for the
// event. Pending and cancelled rows are ignored.
func (r *BookingRepositoryImpl) ConfirmedTableIDs(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	query := `
		SELECT table_id
		FROM event_bookings
		WHERE event_id = $1 AND status = $2
	`
	rows, err := r.pool.Query(ctx, query, eventID, model.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *BookingRepositoryImpl) IsTableConfirmed(ctx context.Context, eventID uuid.UUID, tableID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM event_bookings
			WHERE event_id = $1 AND table_id = $2 AND status = $3
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, eventID, tableID, model.BookingStatusConfirmed).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *BookingRepositoryImpl) UpdateStatus(
	ctx context.Context,
	tx pgx.Tx,
	id uuid.UUID,
	status model.BookingStatus,
) (*model.EventBooking, error) {
	query := `
		UPDATE event_bookings
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + bookingColumns

	booking, err := scanBooking(tx.QueryRow(ctx, query, status, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, apperrors.ErrBookingNotFound) {
			return nil, err
		}
		if isUniqueViolation(err, constraintConfirmedTable) {
			return nil, apperrors.ErrTableUnavailable
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	return booking, nil
}

// Delete 管理員硬刪除訂位
func (r *BookingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM event_bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrBookingNotFound
	}

	return nil
}
