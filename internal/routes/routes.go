package routes

import (
	"net/http"

	"japa_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API under /api/v1 plus the health probe.
func RegisterRoutes(router *gin.Engine, h *handlers.AppHandlers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		h.Payment.RegisterRoutes(api)
		h.Auth.RegisterRoutes(api)
		h.Application.RegisterRoutes(api)
		h.Module.RegisterRoutes(api)
		h.User.RegisterRoutes(api)
		h.EnglishTest.RegisterRoutes(api)
	}
}
