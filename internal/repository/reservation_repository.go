package repository

import (
	"context"
	"fmt"

	"venue-booking/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository interface {
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Reservation, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation) (*model.Reservation, error)
}

type ReservationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &ReservationRepositoryImpl{
		pool: pool,
	}
}

const reservationColumns = `id, name, email, phone, reservation_date, reservation_time, party_size,
		event_id, table_id, booking_ref, payment_intent_id, status, notes, created_at`

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID,
		&res.Name,
		&res.Email,
		&res.Phone,
		&res.Date,
		&res.Time,
		&res.PartySize,
		&res.EventID,
		&res.TableID,
		&res.BookingRef,
		&res.PaymentIntentID,
		&res.Status,
		&res.Notes,
		&res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation) (*model.Reservation, error) {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	query := `
		INSERT INTO reservations (
			id, name, email, phone, reservation_date, reservation_time, party_size,
			event_id, table_id, booking_ref, payment_intent_id, status, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + reservationColumns

	created, err := scanReservation(tx.QueryRow(ctx, query,
		reservation.ID, reservation.Name, reservation.Email, reservation.Phone,
		reservation.Date, reservation.Time, reservation.PartySize, reservation.EventID,
		reservation.TableID, reservation.BookingRef, reservation.PaymentIntentID,
		reservation.Status, reservation.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	return created, nil
}

func (r *ReservationRepositoryImpl) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE event_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]*model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}
