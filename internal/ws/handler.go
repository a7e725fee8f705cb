package ws

import (
	"net/http"

	"reflex_drills/internal/game"
	"reflex_drills/internal/logger"
	"reflex_drills/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades GET /ws?token=…&game=… and hands the connection to the
// hub. An empty allowedOrigin accepts any origin.
func HandleWS(hub *Hub, tokens *service.TokenIssuer, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		// set when the JWT middleware ran first
		playerID := c.GetString("player_id")
		if playerID == "" {
			token := c.Query("token")
			if token == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
				return
			}

			var err error
			playerID, err = tokens.Parse(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
		}

		kind, ok := game.ParseKind(c.Query("game"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown game", "games": game.Kinds})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(playerID, kind, conn, hub)
		go client.Run()
	}
}
