package handler

import (
	"errors"
	"net/http"

	"venue-booking/internal/middleware"
	apperrors "venue-booking/pkg/app_errors"
	"venue-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorMapping struct {
	target  error
	status  int
	message string
	// detail 為 true 時回傳完整錯誤字串 (例如優惠碼的具體原因)
	detail  bool
}

var errorMappings = []errorMapping{
	{apperrors.ErrInvalidInput, http.StatusBadRequest, "Invalid request", false},
	{apperrors.ErrInvalidBirthDate, http.StatusBadRequest, "Invalid date of birth", false},
	{apperrors.ErrInvalidWebhookSignature, http.StatusBadRequest, "Invalid signature", false},
	{apperrors.ErrUnderage, http.StatusUnprocessableEntity, "You must be at least 21 years old to book", false},
	{apperrors.ErrInvalidPromo, http.StatusUnprocessableEntity, "", true},
	{apperrors.ErrInvalidIntentMetadata, http.StatusUnprocessableEntity, "Payment intent is missing booking details", false},

	{apperrors.ErrEventNotFound, http.StatusNotFound, "Event not found", false},
	{apperrors.ErrTableNotFound, http.StatusNotFound, "Table not found", false},
	{apperrors.ErrBookingNotFound, http.StatusNotFound, "Booking not found", false},
	{apperrors.ErrPurchaseNotFound, http.StatusNotFound, "Purchase not found", false},
	{apperrors.ErrPromoNotFound, http.StatusNotFound, "Promo code not found", false},
	{apperrors.ErrIntentNotFound, http.StatusNotFound, "Payment not found", false},
	{apperrors.ErrIssueNotFound, http.StatusNotFound, "Reconciliation issue not found", false},

	{apperrors.ErrTableUnavailable, http.StatusConflict, "Table no longer available", false},
	{apperrors.ErrEventSoldOut, http.StatusConflict, "Event is sold out", false},
	{apperrors.ErrInsufficientCapacity, http.StatusConflict, "Not enough tickets left", false},
	{apperrors.ErrEventEnded, http.StatusConflict, "Event has already ended", false},
	{apperrors.ErrPromoExists, http.StatusConflict, "Promo code already exists", false},
	{apperrors.ErrInvalidBookingStatus, http.StatusConflict, "Booking cannot be changed in its current status", false},
	{apperrors.ErrPaymentNotCompleted, http.StatusConflict, "Payment not completed", false},
	{apperrors.ErrDuplicatePaymentIntent, http.StatusConflict, "Payment already recorded", false},

	{apperrors.ErrPaymentProvider, http.StatusBadGateway, "Payment provider unavailable, please retry", false},
}

// handleError 將 service 層錯誤轉成 HTTP 回應；未知錯誤一律 500 且不外洩內容
func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(
		zap.String("operation", operation),
		zap.String("request_id", c.GetString(middleware.ContextKeyRequestID)),
		zap.Error(err),
	)

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if m.detail {
			msg = err.Error()
		}
		if m.status >= http.StatusInternalServerError {
			log.Error("Upstream failure")
		} else {
			log.Warn("Request rejected", zap.Int("status", m.status))
		}
		c.JSON(m.status, gin.H{"error": msg})
		return
	}

	log.Error("Unexpected error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func handleSuccess(c *gin.Context, data interface{}, status int) {
	c.JSON(status, data)
}
