package model

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus 桌位訂位狀態類型
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsValid 驗證狀態是否有效
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	transitions := map[BookingStatus][]BookingStatus{
		BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
		BookingStatusConfirmed: {BookingStatusCancelled},
		BookingStatusCancelled: {}, // 不能轉換到任何狀態
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// EventBooking reserves one table for one event. Only confirmed rows count
// toward availability.
type EventBooking struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	EventID         uuid.UUID     `json:"event_id" db:"event_id"`
	TableID         string        `json:"table_id" db:"table_id"`
	CustomerName    string        `json:"customer_name" db:"customer_name"`
	CustomerEmail   string        `json:"customer_email" db:"customer_email"`
	GuestPhone      string        `json:"guest_phone" db:"guest_phone"`
	GuestDOB        *time.Time    `json:"guest_dob,omitempty" db:"guest_dob"`
	Status          BookingStatus `json:"status" db:"status"`
	PaymentIntentID *string       `json:"payment_intent_id,omitempty" db:"payment_intent_id"`
	BookingRef      string        `json:"booking_ref" db:"booking_ref"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

func (b *EventBooking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}
