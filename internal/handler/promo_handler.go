package handler

import (
	"net/http"

	"venue-booking/internal/model"
	"venue-booking/internal/service"

	"github.com/gin-gonic/gin"
)

type PromoHandler struct {
	service service.PromoService
}

func NewPromoHandler(service service.PromoService) *PromoHandler {
	return &PromoHandler{service: service}
}

func (h *PromoHandler) RegisterRoutes(api, admin *gin.RouterGroup) {
	api.POST("promos/validate", h.Validate)

	admin.POST("promos", h.Create)
	admin.PUT("promos/:code", h.Update)
	admin.GET("promos/:code/redemptions", h.Redemptions)
}

// Validate 查無、停用、過期一律回 200 與 valid=false
func (h *PromoHandler) Validate(c *gin.Context) {
	var req model.ValidatePromoRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	result, err := h.service.ValidatePromo(c, req.Code)
	if err != nil {
		handleError(c, err, "ValidatePromo")
		return
	}
	handleSuccess(c, result, http.StatusOK)
}

func (h *PromoHandler) Create(c *gin.Context) {
	var req model.CreatePromoRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	created, err := h.service.Create(c, req.ToPromo())
	if err != nil {
		handleError(c, err, "CreatePromo")
		return
	}
	handleSuccess(c, created, http.StatusCreated)
}

func (h *PromoHandler) Update(c *gin.Context) {
	var req model.UpdatePromoRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	updated, err := h.service.Update(c, c.Param("code"), req.ToParams())
	if err != nil {
		handleError(c, err, "UpdatePromo")
		return
	}
	handleSuccess(c, updated, http.StatusOK)
}

func (h *PromoHandler) Redemptions(c *gin.Context) {
	purchases, err := h.service.Redemptions(c, c.Param("code"))
	if err != nil {
		handleError(c, err, "PromoRedemptions")
		return
	}
	handleSuccess(c, gin.H{"code": model.NormalizePromoCode(c.Param("code")), "purchases": purchases}, http.StatusOK)
}
