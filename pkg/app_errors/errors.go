package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternalServerError = errors.New("internal server error")

	ErrEventNotFound        = errors.New("event not found")
	ErrEventSoldOut         = errors.New("event sold out")
	ErrEventEnded           = errors.New("event has already ended")
	ErrInsufficientCapacity = errors.New("insufficient ticket capacity")

	ErrTableNotFound    = errors.New("table not found")
	ErrTableUnavailable = errors.New("table no longer available")

	ErrBookingNotFound      = errors.New("booking not found")
	ErrInvalidBookingStatus = errors.New("invalid booking status")

	ErrPurchaseNotFound       = errors.New("ticket purchase not found")
	ErrDuplicatePaymentIntent = errors.New("payment intent already recorded")

	ErrPromoNotFound = errors.New("promo code not found")
	ErrPromoExists   = errors.New("promo code already exists")
	ErrInvalidPromo  = errors.New("invalid promo code")

	ErrUnderage         = errors.New("purchaser must be at least 21 years old")
	ErrInvalidBirthDate = errors.New("invalid date of birth")

	// payment bridge
	ErrPaymentProvider         = errors.New("payment provider unavailable")
	ErrIntentNotFound          = errors.New("payment intent not found")
	ErrPaymentNotCompleted     = errors.New("payment not completed")
	ErrInvalidIntentMetadata   = errors.New("invalid payment intent metadata")
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

	ErrIssueNotFound = errors.New("reconciliation issue not found")
)
