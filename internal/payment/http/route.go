package http

import "github.com/gin-gonic/gin"

// RegisterAdminRoutes registers payment review routes on an admin-only group.
func RegisterAdminRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/payments")
	group.GET("/pending", h.ListPending)
	group.POST("/verify", h.Verify)
}
