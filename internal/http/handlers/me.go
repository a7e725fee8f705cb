package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me returns the caller's id and, when one is hosted, the live session view.
func (h *Handler) Me(c *gin.Context) {
	playerID, ok := getPlayerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player not found"})
		return
	}

	resp := gin.H{"player_id": playerID}
	if host, ok := h.Hub.Host(playerID); ok {
		if snap, ok := host.Snapshot(c.Request.Context()); ok {
			resp["session"] = snap
		}
	}

	c.JSON(http.StatusOK, resp)
}
