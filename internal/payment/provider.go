package payment

import "context"

// Intent is the provider's view of a payment intent. Amount is in minor units.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

// WebhookEvent is a provider callback whose signature has been verified.
type WebhookEvent struct {
	ID     string
	Type   string
	Intent *Intent
}

const (
	StatusSucceeded = "succeeded"

	EventPaymentSucceeded = "payment_intent.succeeded"
)

// Provider 金流供應商的最小介面，金額一律為最小貨幣單位
type Provider interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error)
	UpdateIntent(ctx context.Context, id string, amount int64, metadata map[string]string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	ConstructEvent(payload []byte, signature string) (*WebhookEvent, error)
}

// updatable reports whether an intent in this status still accepts amount changes.
func updatable(status string) bool {
	switch status {
	case "requires_payment_method", "requires_confirmation", "requires_action":
		return true
	}
	return false
}
