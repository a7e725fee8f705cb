package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// PlayerRateLimit limits requests per player (not per IP). It needs the JWT
// middleware to have stored the player id.
func PlayerRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return rateLimit("player_rl", maxRequests, window, func(c *gin.Context) string {
		return c.GetString(PlayerIDKey)
	})
}
