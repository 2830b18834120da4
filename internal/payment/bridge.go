package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"venue-booking/internal/model"
	apperrors "venue-booking/pkg/app_errors"
	"venue-booking/pkg/logger"

	"go.uber.org/zap"
)

// IntentHandle is what the client needs to collect payment.
type IntentHandle struct {
	ID           string
	ClientSecret string
}

// VerifiedIntent is the authoritative state of an intent. Amount is in major units.
type VerifiedIntent struct {
	ID        string
	Status    string
	Amount    float64
	Currency  string
	Succeeded bool
	Metadata  model.BookingMetadata
}

type Bridge interface {
	// CreateOrUpdateIntent 建立或更新付款意圖，existingID 為空時建立新的
	CreateOrUpdateIntent(ctx context.Context, existingID string, amount float64, metadata model.BookingMetadata) (*IntentHandle, error)
	// RetrieveIntent 取回供應商端的權威狀態。metadata 無效時仍回傳 intent 並附帶 ErrInvalidIntentMetadata
	RetrieveIntent(ctx context.Context, id string) (*VerifiedIntent, error)
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

type BridgeImpl struct {
	provider Provider
	currency string
}

func NewBridge(provider Provider, currency string) Bridge {
	if currency == "" {
		currency = "usd"
	}
	return &BridgeImpl{
		provider: provider,
		currency: currency,
	}
}

// ToMinorUnits converts a major-unit amount to cents.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}

func (b *BridgeImpl) CreateOrUpdateIntent(ctx context.Context, existingID string, amount float64, metadata model.BookingMetadata) (*IntentHandle, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidInput
	}
	cents := ToMinorUnits(amount)

	if existingID != "" {
		existing, err := b.provider.GetIntent(ctx, existingID)
		switch {
		case err == nil && updatable(existing.Status) && ownedBy(existing, metadata):
			updated, err := b.provider.UpdateIntent(ctx, existingID, cents, UpdateMetadataMap(metadata))
			if err != nil {
				return nil, b.wrap("update intent", err)
			}
			return &IntentHandle{ID: updated.ID, ClientSecret: updated.ClientSecret}, nil
		case err != nil && !errors.Is(err, apperrors.ErrIntentNotFound):
			return nil, b.wrap("get intent", err)
		}
		// 舊的 intent 已不可更新或不存在，改建立新的
		logger.WithComponent("payment").Info("existing intent not reusable, creating new one",
			zap.String("payment_intent_id", existingID))
	}

	created, err := b.provider.CreateIntent(ctx, cents, b.currency, MetadataToMap(metadata))
	if err != nil {
		return nil, b.wrap("create intent", err)
	}
	return &IntentHandle{ID: created.ID, ClientSecret: created.ClientSecret}, nil
}

func (b *BridgeImpl) RetrieveIntent(ctx context.Context, id string) (*VerifiedIntent, error) {
	if id == "" {
		return nil, apperrors.ErrInvalidInput
	}
	intent, err := b.provider.GetIntent(ctx, id)
	if err != nil {
		return nil, b.wrap("get intent", err)
	}
	return verify(intent)
}

func (b *BridgeImpl) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := b.provider.ConstructEvent(payload, signature)
	if err != nil {
		logger.WithComponent("payment").Warn("webhook signature rejected", zap.Error(err))
		return nil, apperrors.ErrInvalidWebhookSignature
	}
	return event, nil
}

// ownedBy 只允許同一位顧客（email）沿用自己的 intent
func ownedBy(intent *Intent, metadata model.BookingMetadata) bool {
	email := strings.TrimSpace(intent.Metadata[metaEmail])
	return email != "" && strings.EqualFold(email, strings.TrimSpace(metadata.CustomerEmail))
}

// verify turns a provider intent into the parsed, authoritative view.
func verify(intent *Intent) (*VerifiedIntent, error) {
	v := &VerifiedIntent{
		ID:        intent.ID,
		Status:    intent.Status,
		Amount:    FromMinorUnits(intent.Amount),
		Currency:  intent.Currency,
		Succeeded: intent.Status == StatusSucceeded,
	}
	md, err := ParseMetadata(intent.Metadata)
	if err != nil {
		return v, err
	}
	v.Metadata = md
	return v, nil
}

func (b *BridgeImpl) wrap(op string, err error) error {
	if errors.Is(err, apperrors.ErrIntentNotFound) {
		return err
	}
	logger.WithComponent("payment").Error("payment provider call failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, apperrors.ErrPaymentProvider)
}
