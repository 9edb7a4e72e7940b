package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers login and profile routes. loginMiddleware runs
// before every login attempt.
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, authMiddleware, loginMiddleware gin.HandlerFunc) {
	g.POST("/auth/login", loginMiddleware, h.Login)
	g.GET("/me", authMiddleware, h.Me)
}
