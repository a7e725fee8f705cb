package middleware

import (
	"net/http"
	"strings"

	"reflex_drills/internal/service"

	"github.com/gin-gonic/gin"
)

// PlayerIDKey is the gin context key holding the authenticated player id.
const PlayerIDKey = "player_id"

// JWT accepts a bearer token or a ?token= query parameter (browsers cannot
// set headers on WebSocket upgrades).
func JWT(tokens *service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		playerID, err := tokens.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(PlayerIDKey, playerID)
		c.Next()
	}
}
