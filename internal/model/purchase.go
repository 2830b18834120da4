package model

import (
	"time"

	"github.com/google/uuid"
)

type PurchaseStatus string

const (
	PurchaseStatusFree      PurchaseStatus = "free"
	PurchaseStatusPaid      PurchaseStatus = "paid"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

type TicketType string

const (
	TicketTypeStandard         TicketType = "standard_ticket"
	TicketTypeTableReservation TicketType = "table_reservation"
)

func (t TicketType) IsValid() bool {
	return t == TicketTypeStandard || t == TicketTypeTableReservation
}

func (t TicketType) IsTable() bool {
	return t == TicketTypeTableReservation
}

// TicketPurchase is written once per completed purchase attempt. A non-nil
// PaymentIntentID is unique across all rows.
type TicketPurchase struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	EventID         uuid.UUID      `json:"event_id" db:"event_id"`
	CustomerName    string         `json:"customer_name" db:"customer_name"`
	CustomerEmail   string         `json:"customer_email" db:"customer_email"`
	CustomerPhone   string         `json:"customer_phone" db:"customer_phone"`
	CustomerDOB     *time.Time     `json:"customer_dob,omitempty" db:"customer_dob"`
	Quantity        int            `json:"quantity" db:"quantity"`
	TotalPrice      float64        `json:"total_price" db:"total_price"`
	Status          PurchaseStatus `json:"status" db:"status"`
	PaymentIntentID *string        `json:"payment_intent_id,omitempty" db:"payment_intent_id"`
	CouponCode      *string        `json:"coupon_code,omitempty" db:"coupon_code"`
	TicketType      TicketType     `json:"ticket_type" db:"ticket_type"`
	TableID         *string        `json:"table_id,omitempty" db:"table_id"`
	BookingRef      string         `json:"booking_ref" db:"booking_ref"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
}
