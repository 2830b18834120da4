package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TxBeginner 由 *pgxpool.Pool 實作，service 層透過它開啟交易
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

const uniqueViolation = "23505"

// Constraint names from schema.sql.
const (
	constraintConfirmedTable = "event_bookings_confirmed_table_uniq"
	constraintPaymentIntent  = "ticket_purchases_payment_intent_uniq"
	constraintPromoCode      = "promo_codes_pkey"
)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}
