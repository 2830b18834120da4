package pricing

import (
	"math"

	"venue-booking/internal/model"
)

// ComputeFee applies a percentage discount to base. d is clamped to [0,100],
// the result is rounded to cents and never negative.
func ComputeFee(base, d float64) float64 {
	if base <= 0 {
		return 0
	}
	if math.IsNaN(d) || d < 0 {
		d = 0
	}
	if d > 100 {
		d = 100
	}
	fee := roundCents(base * (1 - d/100))
	if fee < 0 {
		return 0
	}
	return fee
}

// LineTotal 單價乘以數量，不做任何比例折算
func LineTotal(unitPrice float64, quantity int) float64 {
	if quantity <= 0 || unitPrice <= 0 {
		return 0
	}
	return roundCents(unitPrice * float64(quantity))
}

// TableBaseFee uses the event's table price when set, otherwise the table's own price.
func TableBaseFee(event *model.Event, table *model.Table) float64 {
	if event != nil && event.TablePrice > 0 {
		return event.TablePrice
	}
	if table != nil {
		return table.Price
	}
	return 0
}

// Quote prices a prospective checkout. Table reservations are always quantity 1.
func Quote(event *model.Event, table *model.Table, ticketType model.TicketType, quantity int, discount float64, code string) model.PriceQuote {
	q := model.PriceQuote{
		Quantity:  quantity,
		PromoCode: code,
	}
	if ticketType.IsTable() {
		q.Quantity = 1
		q.UnitPrice = TableBaseFee(event, table)
	} else {
		if q.Quantity <= 0 {
			q.Quantity = 1
		}
		q.UnitPrice = event.TicketPrice
	}
	q.BasePrice = LineTotal(q.UnitPrice, q.Quantity)
	if code != "" {
		q.DiscountPercent = discount
	}
	q.FinalPrice = ComputeFee(q.BasePrice, q.DiscountPercent)
	q.IsFree = q.FinalPrice == 0
	return q
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
