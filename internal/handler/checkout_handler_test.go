package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"venue-booking/internal/model"
	apperrors "venue-booking/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func validCheckoutBody(eventID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"event_id":    eventID.String(),
		"ticket_type": "table_reservation",
		"table_id":    "vip-1",
		"name":        "Jane Doe",
		"email":       "jane@example.com",
		"dob":         "1990-05-01",
	}
}

func TestCheckout(t *testing.T) {
	eventID := uuid.New()

	t.Run("Success - free booking is created", func(t *testing.T) {
		router, m := setupTestRouter()
		m.checkout.On("Checkout", mock.Anything, mock.MatchedBy(func(req model.CheckoutRequest) bool {
			return req.EventID == eventID && req.TableID == "vip-1" && req.DateOfBirth == "1990-05-01"
		})).Return(&model.CheckoutResult{
			Outcome:    model.OutcomeConfirmed,
			BookingRef: "RST-ABC123",
			Quote:      model.PriceQuote{IsFree: true, Quantity: 1},
		}, nil).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout", validCheckoutBody(eventID)))

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decode(t, w)
		assert.Equal(t, "confirmed", body["outcome"])
		assert.Equal(t, "RST-ABC123", body["booking_ref"])
		m.checkout.AssertExpectations(t)
	})

	t.Run("Success - paid booking returns client secret", func(t *testing.T) {
		router, m := setupTestRouter()
		m.checkout.On("Checkout", mock.Anything, mock.Anything).Return(&model.CheckoutResult{
			Outcome:         model.OutcomePendingPayment,
			BookingRef:      "RST-XYZ789",
			ClientSecret:    "pi_1_secret_abc",
			PaymentIntentID: "pi_1",
			Quote:           model.PriceQuote{FinalPrice: 500, Quantity: 1},
		}, nil).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout", validCheckoutBody(eventID)))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "pending_payment", body["outcome"])
		assert.Equal(t, "pi_1_secret_abc", body["client_secret"])
	})

	t.Run("Failed - underage", func(t *testing.T) {
		router, m := setupTestRouter()
		m.checkout.On("Checkout", mock.Anything, mock.Anything).Return(nil, apperrors.ErrUnderage).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout", validCheckoutBody(eventID)))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decode(t, w)["error"], "21")
	})

	t.Run("Failed - table taken", func(t *testing.T) {
		router, m := setupTestRouter()
		m.checkout.On("Checkout", mock.Anything, mock.Anything).Return(nil, apperrors.ErrTableUnavailable).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout", validCheckoutBody(eventID)))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Table no longer available", decode(t, w)["error"])
	})

	t.Run("Failed - sold out", func(t *testing.T) {
		router, m := setupTestRouter()
		m.checkout.On("Checkout", mock.Anything, mock.Anything).Return(nil, apperrors.ErrEventSoldOut).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout", validCheckoutBody(eventID)))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Failed - invalid promo carries reason", func(t *testing.T) {
		router, m := setupTestRouter()
		m.checkout.On("Checkout", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidPromo, model.PromoMessageExpired)).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout", validCheckoutBody(eventID)))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decode(t, w)["error"], model.PromoMessageExpired)
	})

	t.Run("Failed - payment provider down", func(t *testing.T) {
		router, m := setupTestRouter()
		m.checkout.On("Checkout", mock.Anything, mock.Anything).Return(nil, apperrors.ErrPaymentProvider).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout", validCheckoutBody(eventID)))

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("Failed - unexpected error is not leaked", func(t *testing.T) {
		router, m := setupTestRouter()
		m.checkout.On("Checkout", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("pq: connection reset")).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout", validCheckoutBody(eventID)))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error", decode(t, w)["error"])
	})

	t.Run("Failed - BindingError", func(t *testing.T) {
		router, m := setupTestRouter()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout", InvalidJSON))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		m.checkout.AssertNotCalled(t, "Checkout")
	})

	t.Run("Failed - malformed dob rejected before service", func(t *testing.T) {
		router, m := setupTestRouter()
		body := validCheckoutBody(eventID)
		body["dob"] = "01/05/1990"

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout", body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		m.checkout.AssertNotCalled(t, "Checkout")
	})

	t.Run("Failed - table booking without table id", func(t *testing.T) {
		router, m := setupTestRouter()
		body := validCheckoutBody(eventID)
		delete(body, "table_id")

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout", body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		m.checkout.AssertNotCalled(t, "Checkout")
	})
}

func TestQuote(t *testing.T) {
	eventID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		router, m := setupTestRouter()
		m.checkout.On("Quote", mock.Anything, mock.MatchedBy(func(req model.QuoteRequest) bool {
			return req.EventID == eventID && req.Quantity == 2 && req.PromoCode == "vip20"
		})).Return(&model.PriceQuote{
			UnitPrice: 25, Quantity: 2, BasePrice: 50, DiscountPercent: 20, FinalPrice: 40, PromoCode: "VIP20",
		}, nil).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout/quote", map[string]interface{}{
			"event_id":    eventID.String(),
			"ticket_type": "standard_ticket",
			"quantity":    2,
			"promo_code":  "vip20",
		}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(40), decode(t, w)["final_price"])
		m.checkout.AssertExpectations(t)
	})

	t.Run("Failed - event not found", func(t *testing.T) {
		router, m := setupTestRouter()
		m.checkout.On("Quote", mock.Anything, mock.Anything).Return(nil, apperrors.ErrEventNotFound).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout/quote", map[string]interface{}{
			"event_id":    eventID.String(),
			"ticket_type": "standard_ticket",
		}))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Failed - unknown ticket type", func(t *testing.T) {
		router, m := setupTestRouter()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout/quote", map[string]interface{}{
			"event_id":    eventID.String(),
			"ticket_type": "bottle_service",
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		m.checkout.AssertNotCalled(t, "Quote")
	})
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name     string
		result   *model.FinalizeResult
		err      error
		wantCode int
	}{
		{"confirmed", &model.FinalizeResult{Outcome: model.OutcomeConfirmed, BookingRef: "RST-AAAAAA"}, nil, http.StatusOK},
		{"already recorded", &model.FinalizeResult{Outcome: model.OutcomeAlreadyRecorded, BookingRef: "RST-AAAAAA"}, nil, http.StatusOK},
		{"reconciliation required", &model.FinalizeResult{
			Outcome: model.OutcomeReconciliationRequired,
			Message: model.MessageReconciliationRequired,
		}, nil, http.StatusAccepted},
		{"payment not completed", nil, apperrors.ErrPaymentNotCompleted, http.StatusConflict},
		{"intent not found", nil, apperrors.ErrIntentNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setupTestRouter()
			m.checkout.On("Finalize", mock.Anything, "pi_123").Return(tt.result, tt.err).Once()

			w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout/finalize", map[string]string{
				"payment_intent_id": "pi_123",
			}))

			assert.Equal(t, tt.wantCode, w.Code)
			m.checkout.AssertExpectations(t)
		})
	}

	t.Run("missing intent id", func(t *testing.T) {
		router, m := setupTestRouter()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout/finalize", map[string]string{}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		m.checkout.AssertNotCalled(t, "Finalize")
	})
}

func TestWebhook(t *testing.T) {
	payload := `{"id":"evt_1","type":"payment_intent.succeeded"}`

	newReq := func() *http.Request {
		req := createJSONHTTPRequest("POST", "/api/v1/webhooks/payment", payload)
		req.Header.Set("Stripe-Signature", "t=1,v1=abc")
		return req
	}

	tests := []struct {
		name     string
		result   *model.FinalizeResult
		err      error
		wantCode int
	}{
		{"confirmed", &model.FinalizeResult{Outcome: model.OutcomeConfirmed}, nil, http.StatusOK},
		{"ignored event type", nil, nil, http.StatusOK},
		{"permanent reconciliation issue acknowledged", &model.FinalizeResult{Outcome: model.OutcomeReconciliationRequired}, nil, http.StatusOK},
		{"transient reconciliation issue retried", &model.FinalizeResult{Outcome: model.OutcomeReconciliationRequired, Retryable: true}, nil, http.StatusInternalServerError},
		{"bad signature", nil, apperrors.ErrInvalidWebhookSignature, http.StatusBadRequest},
		{"provider down", nil, apperrors.ErrPaymentProvider, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, m := setupTestRouter()
			m.checkout.On("HandleWebhook", mock.Anything, []byte(payload), "t=1,v1=abc").Return(tt.result, tt.err).Once()

			w := serve(router, newReq())

			assert.Equal(t, tt.wantCode, w.Code)
			m.checkout.AssertExpectations(t)
		})
	}
}
