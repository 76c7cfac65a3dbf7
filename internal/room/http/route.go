package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	hotelRooms := g.Group("/hotels/:id/rooms")

	// === Public Routes ===
	hotelRooms.GET("", h.ListByHotel)

	// === Admin Routes ===
	admin := hotelRooms.Group("")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("", h.Create)
	}

	rooms := g.Group("/rooms")
	rooms.GET("/:id", h.Get)

	roomsAdmin := rooms.Group("")
	roomsAdmin.Use(authMiddleware, adminMiddleware)
	{
		roomsAdmin.DELETE("/:id", h.Delete)
	}
}
