package handlers

import (
	"net/http"

	"reflex_drills/internal/logger"

	"github.com/gin-gonic/gin"
)

// GuestAuth issues a token for a new anonymous player.
func (h *Handler) GuestAuth(c *gin.Context) {
	playerID, token, err := h.Tokens.NewGuest()
	if err != nil {
		logger.Error("guest token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player_id": playerID,
		"token":     token,
	})
}
