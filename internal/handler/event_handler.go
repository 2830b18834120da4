package handler

import (
	"net/http"

	"venue-booking/internal/model"
	"venue-booking/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service      service.EventService
	availability service.AvailabilityService
}

func NewEventHandler(service service.EventService, availability service.AvailabilityService) *EventHandler {
	return &EventHandler{service: service, availability: availability}
}

func (h *EventHandler) RegisterRoutes(api, admin *gin.RouterGroup) {
	api.GET("events/:id", h.GetSummary)
	api.GET("events/:id/tables", h.ListTables)

	admin.POST("events", h.Create)
	admin.PUT("events/:id", h.Update)
}

func (h *EventHandler) GetSummary(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	summary, err := h.service.GetSummary(c, eventID)
	if err != nil {
		handleError(c, err, "GetEventSummary")
		return
	}
	handleSuccess(c, summary, http.StatusOK)
}

// ListTables 回傳活動的桌位平面圖；查詢失敗時所有桌位視為已訂
func (h *EventHandler) ListTables(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	handleSuccess(c, gin.H{"tables": h.availability.ForEvent(c, eventID)}, http.StatusOK)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req model.CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	created, err := h.service.Create(c, req.ToEvent())
	if err != nil {
		handleError(c, err, "CreateEvent")
		return
	}
	handleSuccess(c, created, http.StatusCreated)
}

func (h *EventHandler) Update(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req model.UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	updated, err := h.service.Update(c, eventID, req.ToParams())
	if err != nil {
		handleError(c, err, "UpdateEvent")
		return
	}
	handleSuccess(c, updated, http.StatusOK)
}
