package model

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutRequest 前台送出的訂位/購票請求
type CheckoutRequest struct {
	EventID         uuid.UUID  `json:"event_id" binding:"required"`
	TicketType      TicketType `json:"ticket_type" binding:"required,oneof=standard_ticket table_reservation"`
	TableID         string     `json:"table_id" binding:"required_if=TicketType table_reservation,max=64"`
	Quantity        int        `json:"quantity" binding:"omitempty,min=1,max=20"`
	CustomerName    string     `json:"name" binding:"required,max=120"`
	CustomerEmail   string     `json:"email" binding:"required,email"`
	CustomerPhone   string     `json:"phone" binding:"omitempty,max=40"`
	DateOfBirth     string     `json:"dob" binding:"required,isodate"`
	PromoCode       string     `json:"promo_code" binding:"omitempty,max=40"`
	PaymentIntentID string     `json:"payment_intent_id" binding:"omitempty,max=255"`
}

type QuoteRequest struct {
	EventID    uuid.UUID  `json:"event_id" binding:"required"`
	TicketType TicketType `json:"ticket_type" binding:"required,oneof=standard_ticket table_reservation"`
	TableID    string     `json:"table_id" binding:"required_if=TicketType table_reservation,max=64"`
	Quantity   int        `json:"quantity" binding:"omitempty,min=1,max=20"`
	PromoCode  string     `json:"promo_code" binding:"omitempty,max=40"`
}

type FinalizeRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required,max=255"`
}

type PriceQuote struct {
	UnitPrice       float64 `json:"unit_price"`
	Quantity        int     `json:"quantity"`
	BasePrice       float64 `json:"base_price"`
	DiscountPercent float64 `json:"discount_percent"`
	FinalPrice      float64 `json:"final_price"`
	IsFree          bool    `json:"is_free"`
	PromoCode       string  `json:"promo_code,omitempty"`
}

type CheckoutOutcome string

const (
	OutcomeConfirmed              CheckoutOutcome = "confirmed"
	OutcomePendingPayment         CheckoutOutcome = "pending_payment"
	OutcomeAlreadyRecorded        CheckoutOutcome = "already_recorded"
	OutcomeReconciliationRequired CheckoutOutcome = "reconciliation_required"
)

const MessageReconciliationRequired = "Payment received, confirmation pending. Please contact support with your booking reference."

type CheckoutResult struct {
	Outcome         CheckoutOutcome `json:"outcome"`
	BookingRef      string          `json:"booking_ref,omitempty"`
	Quote           PriceQuote      `json:"quote"`
	ClientSecret    string          `json:"client_secret,omitempty"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	Purchase        *TicketPurchase `json:"purchase,omitempty"`
	Booking         *EventBooking   `json:"booking,omitempty"`
}

type FinalizeResult struct {
	Outcome    CheckoutOutcome `json:"outcome"`
	BookingRef string          `json:"booking_ref,omitempty"`
	Message    string          `json:"message,omitempty"`
	Purchase   *TicketPurchase `json:"purchase,omitempty"`
	// Retryable is set on reconciliation_required when the failure was transient.
	Retryable  bool            `json:"-"`
}

// BookingMetadata is everything needed to rebuild a booking from a payment
// intent alone, without further client input.
type BookingMetadata struct {
	EventID       uuid.UUID
	TicketType    TicketType
	TableID       string
	TableLabel    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	CustomerDOB   *time.Time
	Quantity      int
	// PartySize 桌位可入座人數，寫入賓客名單
	PartySize     int
	CouponCode    string
	BookingRef    string
}

// RecordResult 冪等寫入的結果
type RecordResult struct {
	AlreadyRecorded bool
	Event           *Event
	Purchase        *TicketPurchase
	Booking         *EventBooking
	Reservation     *Reservation
}

// BookingDetails feeds both the customer confirmation and the admin notice.
type BookingDetails struct {
	EventName      string  `json:"eventName"`
	Date           string  `json:"date"`
	TicketType     string  `json:"ticketType"`
	Quantity       int     `json:"quantity"`
	TotalAmount    float64 `json:"totalAmount"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	TableSelection string  `json:"tableSelection"`
	BookingRef     string  `json:"bookingRef"`
}
