package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the customer upload route.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	g.POST("/bookings/ref/receipt", h.Upload)
}

// RegisterAdminRoutes registers receipt downloads on an admin-only group.
func RegisterAdminRoutes(g *gin.RouterGroup, h *Handler) {
	g.GET("/payments/:id/receipt", h.ServeReceipt)
	g.GET("/payments/:id/receipt/thumbnail", h.ServeThumbnail)
}
