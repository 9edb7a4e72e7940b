package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the public booking routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	g.GET("/available-slots", h.AvailableSlots)

	group := g.Group("/bookings")
	group.GET("/ref", h.Lookup)
	group.POST("", h.Create)
}

// RegisterAdminRoutes registers booking reports on an admin-only group.
func RegisterAdminRoutes(g *gin.RouterGroup, h *Handler) {
	g.GET("/stats", h.Stats)
	g.GET("/bookings/recent", h.ListRecent)
}
