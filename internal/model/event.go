package model

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	StartsAt       time.Time `json:"starts_at" db:"starts_at"`
	EndsAt         time.Time `json:"ends_at" db:"ends_at"`
	TicketPrice    float64   `json:"ticket_price" db:"ticket_price"`
	TablePrice     float64   `json:"table_price" db:"table_price"`
	TicketCapacity int       `json:"ticket_capacity" db:"ticket_capacity"`
	IsSoldOut      bool      `json:"is_sold_out" db:"is_sold_out"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Date is the calendar day the event starts on, in UTC.
func (e *Event) Date() time.Time {
	y, m, d := e.StartsAt.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// HasEnded 活動時段是否已結束
func (e *Event) HasEnded(now time.Time) bool {
	return !e.EndsAt.IsZero() && e.EndsAt.Before(now)
}

type UpdateEventParams struct {
	Name           *string
	StartsAt       *time.Time
	EndsAt         *time.Time
	TicketPrice    *float64
	TablePrice     *float64
	TicketCapacity *int
	IsSoldOut      *bool
}

func (p UpdateEventParams) IsEmpty() bool {
	return p.Name == nil && p.StartsAt == nil && p.EndsAt == nil && p.TicketPrice == nil &&
		p.TablePrice == nil && p.TicketCapacity == nil && p.IsSoldOut == nil
}

// EventSummary is the public view used by the booking page.
type EventSummary struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Date             string    `json:"date"`
	StartsAt         time.Time `json:"starts_at"`
	EndsAt           time.Time `json:"ends_at"`
	TicketPrice      float64   `json:"ticket_price"`
	TablePrice       float64   `json:"table_price"`
	IsSoldOut        bool      `json:"is_sold_out"`
	IsFree           bool      `json:"is_free"`
	RemainingTickets int       `json:"remaining_tickets"`
	HasEnded         bool      `json:"has_ended"`
}
