package model

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is the guest-list record written alongside a paid table
// booking. It is never consulted for availability.
type Reservation struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Email           string     `json:"email" db:"email"`
	Phone           string     `json:"phone" db:"phone"`
	Date            time.Time  `json:"reservation_date" db:"reservation_date"`
	Time            string     `json:"reservation_time" db:"reservation_time"`
	PartySize       int        `json:"party_size" db:"party_size"`
	EventID         *uuid.UUID `json:"event_id,omitempty" db:"event_id"`
	TableID         *string    `json:"table_id,omitempty" db:"table_id"`
	BookingRef      string     `json:"booking_ref" db:"booking_ref"`
	PaymentIntentID *string    `json:"payment_intent_id,omitempty" db:"payment_intent_id"`
	Status          string     `json:"status" db:"status"`
	Notes           string     `json:"notes" db:"notes"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}
