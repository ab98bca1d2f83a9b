package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	// Health check endpoint (no version prefix)
	router.GET("/health", handler.HealthCheck)

	// Short redirect for embedding the button as a plain anchor
	router.GET("/r", handler.Redirect)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Ownership endpoints
		v1.POST("/ownerships", handler.Purchase)
		v1.GET("/ownerships/current", handler.GetCurrentOwnership)
		v1.PATCH("/ownerships/:id/link", handler.SetLink)
		v1.PATCH("/ownerships/:id/visuals", handler.SetVisuals)

		// Link endpoints (POST is the legacy pay-per-link flow)
		v1.POST("/links", handler.SubmitLink)
		v1.GET("/links/current", handler.GetCurrentLink)

		// Click endpoints
		v1.POST("/clicks", handler.RecordClick)
		v1.GET("/clicks/recent", handler.GetRecentClicks)
		v1.GET("/clicks/count", handler.GetClickCount)

		// Live event stream
		v1.GET("/events", handler.StreamEvents)
	}
}
