package handler

import (
	"venue-booking/internal/middleware"

	"github.com/gin-gonic/gin"
)

type RouteRegistrar interface {
	RegisterRoutes(api, admin *gin.RouterGroup)
}

// NewRouter 建立 gin engine；admin 群組前面掛上 adminAuth
func NewRouter(adminAuth gin.HandlerFunc, handlers ...RouteRegistrar) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())

	api := r.Group("/api/v1")
	admin := api.Group("/admin", adminAuth)
	for _, h := range handlers {
		h.RegisterRoutes(api, admin)
	}
	return r
}
