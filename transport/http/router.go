package http

import (
	"github.com/gin-gonic/gin"

	"github.com/shilldao/chainauth/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(handlers *Handlers, auth *service.AuthService) *gin.Engine {
	router := gin.Default()

	// Auth routes
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/nonce", handlers.Nonce)
		authGroup.POST("/verify", handlers.Verify)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(auth))
	{
		api.GET("/me", handlers.Me)
		api.POST("/campaigns/verified", handlers.CreateVerifiedCampaign)
	}

	return router
}
