package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "venue-booking/pkg/app_errors"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeProvider{
		api:           sc,
		webhookSecret: webhookSecret,
	}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return fromStripe(pi), nil
}

func (p *StripeProvider) UpdateIntent(ctx context.Context, id string, amount int64, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount: stripe.Int64(amount),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.api.PaymentIntents.Update(id, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return fromStripe(pi), nil
}

func (p *StripeProvider) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return fromStripe(pi), nil
}

// ConstructEvent verifies the Stripe-Signature header before decoding anything.
func (p *StripeProvider) ConstructEvent(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidWebhookSignature, err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if out.Type != EventPaymentSucceeded || event.Data == nil {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	out.Intent = fromStripe(&pi)
	return out, nil
}

func fromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}

func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return apperrors.ErrIntentNotFound
		}
	}
	return err
}
