package handler

import (
	"net/http"

	"venue-booking/internal/model"
	"venue-booking/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler 後台訂位管理與對帳，所有路由掛在需要 admin 角色的群組下
type AdminHandler struct {
	bookings       service.BookingAdminService
	reconciliation service.ReconciliationService
}

func NewAdminHandler(bookings service.BookingAdminService, reconciliation service.ReconciliationService) *AdminHandler {
	return &AdminHandler{bookings: bookings, reconciliation: reconciliation}
}

func (h *AdminHandler) RegisterRoutes(_, admin *gin.RouterGroup) {
	admin.GET("events/:id/bookings", h.ListBookings)
	admin.GET("events/:id/reservations", h.GuestList)
	admin.PUT("bookings/:id/cancel", h.CancelBooking)
	admin.DELETE("bookings/:id", h.DeleteBooking)

	admin.GET("reconciliation-issues", h.ListIssues)
	admin.POST("reconciliation-issues/:intentId/retry", h.RetryIssue)
}

func (h *AdminHandler) ListBookings(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	bookings, err := h.bookings.ListByEvent(c, eventID)
	if err != nil {
		handleError(c, err, "ListBookings")
		return
	}
	handleSuccess(c, gin.H{"bookings": bookings}, http.StatusOK)
}

func (h *AdminHandler) GuestList(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	reservations, err := h.bookings.GuestList(c, eventID)
	if err != nil {
		handleError(c, err, "GuestList")
		return
	}
	handleSuccess(c, gin.H{"reservations": reservations}, http.StatusOK)
}

func (h *AdminHandler) CancelBooking(c *gin.Context) {
	bookingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookings.Cancel(c, bookingID)
	if err != nil {
		handleError(c, err, "CancelBooking")
		return
	}
	handleSuccess(c, booking, http.StatusOK)
}

func (h *AdminHandler) DeleteBooking(c *gin.Context) {
	bookingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.bookings.Delete(c, bookingID); err != nil {
		handleError(c, err, "DeleteBooking")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListIssues(c *gin.Context) {
	issues, err := h.reconciliation.ListOpen(c)
	if err != nil {
		handleError(c, err, "ListReconciliationIssues")
		return
	}
	handleSuccess(c, gin.H{"issues": issues}, http.StatusOK)
}

// RetryIssue 手動重跑一次確認流程
func (h *AdminHandler) RetryIssue(c *gin.Context) {
	result, err := h.reconciliation.Retry(c, c.Param("intentId"))
	if err != nil {
		handleError(c, err, "RetryReconciliationIssue")
		return
	}
	status := http.StatusOK
	if result.Outcome == model.OutcomeReconciliationRequired {
		status = http.StatusAccepted
	}
	handleSuccess(c, result, status)
}
