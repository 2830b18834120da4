package model

import "time"

type CreateEventRequest struct {
	Name           string    `json:"name" binding:"required,max=200"`
	StartsAt       time.Time `json:"starts_at" binding:"required"`
	EndsAt         time.Time `json:"ends_at" binding:"required,gtfield=StartsAt"`
	TicketPrice    float64   `json:"ticket_price" binding:"gte=0"`
	TablePrice     float64   `json:"table_price" binding:"gte=0"`
	TicketCapacity int       `json:"ticket_capacity" binding:"gte=0"`
	IsSoldOut      bool      `json:"is_sold_out"`
}

func (r CreateEventRequest) ToEvent() *Event {
	return &Event{
		Name:           r.Name,
		StartsAt:       r.StartsAt,
		EndsAt:         r.EndsAt,
		TicketPrice:    r.TicketPrice,
		TablePrice:     r.TablePrice,
		TicketCapacity: r.TicketCapacity,
		IsSoldOut:      r.IsSoldOut,
	}
}

type UpdateEventRequest struct {
	Name           *string    `json:"name" binding:"omitempty,max=200"`
	StartsAt       *time.Time `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at"`
	TicketPrice    *float64   `json:"ticket_price" binding:"omitempty,gte=0"`
	TablePrice     *float64   `json:"table_price" binding:"omitempty,gte=0"`
	TicketCapacity *int       `json:"ticket_capacity" binding:"omitempty,gte=0"`
	IsSoldOut      *bool      `json:"is_sold_out"`
}

func (r UpdateEventRequest) ToParams() UpdateEventParams {
	return UpdateEventParams{
		Name:           r.Name,
		StartsAt:       r.StartsAt,
		EndsAt:         r.EndsAt,
		TicketPrice:    r.TicketPrice,
		TablePrice:     r.TablePrice,
		TicketCapacity: r.TicketCapacity,
		IsSoldOut:      r.IsSoldOut,
	}
}

type ValidatePromoRequest struct {
	Code string `json:"code" binding:"required,max=40"`
}

type CreatePromoRequest struct {
	Code            string     `json:"code" binding:"required,max=40"`
	DiscountPercent float64    `json:"discount_percent" binding:"gte=0,lte=100"`
	IsActive        *bool      `json:"is_active"`
	ExpiresAt       *time.Time `json:"expires_at"`
}

func (r CreatePromoRequest) ToPromo() *PromoCode {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &PromoCode{
		Code:            r.Code,
		DiscountPercent: r.DiscountPercent,
		IsActive:        active,
		ExpiresAt:       r.ExpiresAt,
	}
}

type UpdatePromoRequest struct {
	DiscountPercent *float64   `json:"discount_percent" binding:"omitempty,gte=0,lte=100"`
	IsActive        *bool      `json:"is_active"`
	ExpiresAt       *time.Time `json:"expires_at"`
	ClearExpiry     bool       `json:"clear_expiry"`
}

func (r UpdatePromoRequest) ToParams() UpdatePromoParams {
	return UpdatePromoParams{
		DiscountPercent: r.DiscountPercent,
		IsActive:        r.IsActive,
		ExpiresAt:       r.ExpiresAt,
		ClearExpiry:     r.ClearExpiry,
	}
}
