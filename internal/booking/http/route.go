package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	bookings := g.Group("/bookings")
	bookings.Use(authMiddleware)
	{
		bookings.POST("", h.Create)
		bookings.GET("", h.List)
		bookings.GET("/:id", h.Get)
		bookings.PATCH("/:id", h.Update)
		bookings.POST("/:id/cancel", h.Cancel)
	}

	payments := g.Group("/payments")
	payments.Use(authMiddleware)
	{
		payments.POST("/:id/checkout", h.StartCheckout)
	}
}
