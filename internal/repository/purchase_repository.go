package repository

import (
	"context"
	"errors"
	"fmt"

	"venue-booking/internal/model"
	apperrors "venue-booking/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PurchaseRepository interface {
	ListByCoupon(ctx context.Context, code string) ([]*model.TicketPurchase, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, purchase *model.TicketPurchase) (*model.TicketPurchase, error)
	FindByPaymentIntentID(ctx context.Context, tx pgx.Tx, intentID string) (*model.TicketPurchase, error)
	SumActiveQuantity(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (int, error)
}

type PurchaseRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepository(pool *pgxpool.Pool) PurchaseRepository {
	return &PurchaseRepositoryImpl{
		pool: pool,
	}
}

const purchaseColumns = `id, event_id, customer_name, customer_email, customer_phone, customer_dob,
		quantity, total_price, status, payment_intent_id, coupon_code, ticket_type,
		table_id, booking_ref, created_at`

func scanPurchase(row rowScanner) (*model.TicketPurchase, error) {
	var p model.TicketPurchase
	err := row.Scan(
		&p.ID,
		&p.EventID,
		&p.CustomerName,
		&p.CustomerEmail,
		&p.CustomerPhone,
		&p.CustomerDOB,
		&p.Quantity,
		&p.TotalPrice,
		&p.Status,
		&p.PaymentIntentID,
		&p.CouponCode,
		&p.TicketType,
		&p.TableID,
		&p.BookingRef,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPurchaseNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts the purchase. When another row already carries the same
// payment intent the insert is skipped and ErrDuplicatePaymentIntent returned.
func (r *PurchaseRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, purchase *model.TicketPurchase) (*model.TicketPurchase, error) {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	query := `
		INSERT INTO ticket_purchases (
			id, event_id, customer_name, customer_email, customer_phone, customer_dob,
			quantity, total_price, status, payment_intent_id, coupon_code, ticket_type,
			table_id, booking_ref
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (payment_intent_id) WHERE payment_intent_id IS NOT NULL DO NOTHING
		RETURNING ` + purchaseColumns

	created, err := scanPurchase(tx.QueryRow(ctx, query,
		purchase.ID, purchase.EventID, purchase.CustomerName, purchase.CustomerEmail,
		purchase.CustomerPhone, purchase.CustomerDOB, purchase.Quantity, purchase.TotalPrice,
		purchase.Status, purchase.PaymentIntentID, purchase.CouponCode, purchase.TicketType,
		purchase.TableID, purchase.BookingRef,
	))
	if err != nil {
		// DO NOTHING 沒有回傳任何列，代表另一條路徑已寫入
		if errors.Is(err, apperrors.ErrPurchaseNotFound) || isUniqueViolation(err, constraintPaymentIntent) {
			return nil, apperrors.ErrDuplicatePaymentIntent
		}
		return nil, fmt.Errorf("failed to create ticket purchase: %w", err)
	}
	return created, nil
}

func (r *PurchaseRepositoryImpl) FindByPaymentIntentID(ctx context.Context, tx pgx.Tx, intentID string) (*model.TicketPurchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM ticket_purchases WHERE payment_intent_id = $1`
	return scanPurchase(tx.QueryRow(ctx, query, intentID))
}

// SumActiveQuantity counts standard tickets already issued for the event.
// Call it after locking the event row.
func (r *PurchaseRepositoryImpl) SumActiveQuantity(ctx context.Context, tx pgx.Tx, eventID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM ticket_purchases
		WHERE event_id = $1
		  AND ticket_type = $2
		  AND status != $3
	`

	var total int
	err := tx.QueryRow(ctx, query, eventID, model.TicketTypeStandard, model.PurchaseStatusCancelled).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

func (r *PurchaseRepositoryImpl) ListByCoupon(ctx context.Context, code string) ([]*model.TicketPurchase, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM ticket_purchases
		WHERE coupon_code = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, model.NormalizePromoCode(code))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]*model.TicketPurchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return purchases, nil
}
