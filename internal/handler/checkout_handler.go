package handler

import (
	"net/http"

	"venue-booking/internal/model"
	"venue-booking/internal/service"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type CheckoutHandler struct {
	service service.CheckoutService
}

func NewCheckoutHandler(service service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

func (h *CheckoutHandler) RegisterRoutes(api, _ *gin.RouterGroup) {
	api.POST("checkout/quote", h.Quote)
	api.POST("checkout", h.Checkout)
	api.POST("checkout/finalize", h.Finalize)
	api.POST("webhooks/payment", h.Webhook)
}

func (h *CheckoutHandler) Quote(c *gin.Context) {
	var req model.QuoteRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	quote, err := h.service.Quote(c, req)
	if err != nil {
		handleError(c, err, "Quote")
		return
	}
	handleSuccess(c, quote, http.StatusOK)
}

// Checkout 免費訂單直接 201；付費訂單回 200 並附上 client secret
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req model.CheckoutRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	result, err := h.service.Checkout(c, req)
	if err != nil {
		handleError(c, err, "Checkout")
		return
	}

	status := http.StatusOK
	if result.Outcome == model.OutcomeConfirmed {
		status = http.StatusCreated
	}
	handleSuccess(c, result, status)
}

func (h *CheckoutHandler) Finalize(c *gin.Context) {
	var req model.FinalizeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	result, err := h.service.Finalize(c, req.PaymentIntentID)
	if err != nil {
		handleError(c, err, "Finalize")
		return
	}

	status := http.StatusOK
	if result.Outcome == model.OutcomeReconciliationRequired {
		status = http.StatusAccepted
	}
	handleSuccess(c, result, status)
}

// Webhook 必須讀取原始 body 才能驗證簽章。
// 只有可重試的失敗才回 5xx，讓供應商重送；永久性問題回 200 並交給對帳。
func (h *CheckoutHandler) Webhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.service.HandleWebhook(c, payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		handleError(c, err, "Webhook")
		return
	}
	if result == nil {
		handleSuccess(c, gin.H{"received": true}, http.StatusOK)
		return
	}
	if result.Outcome == model.OutcomeReconciliationRequired && result.Retryable {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Booking not recorded, retry later"})
		return
	}
	handleSuccess(c, gin.H{"received": true, "outcome": result.Outcome}, http.StatusOK)
}
