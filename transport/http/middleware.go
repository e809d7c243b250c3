package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shilldao/chainauth/service"
)

// AuthMiddleware creates middleware that validates bearer access tokens and
// puts the wallet address they were issued for into the request context.
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")

		address, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("userAddress", address)

		c.Next()
	}
}
