package handlers

import (
	"reflex_drills/internal/config"
	"reflex_drills/internal/game"
	"reflex_drills/internal/service"
	"reflex_drills/internal/ws"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Games   config.Games
	Catalog []game.Scenario
	Tokens  *service.TokenIssuer
	Hub     *ws.Hub
}

func NewHandler(games config.Games, catalog []game.Scenario, tokens *service.TokenIssuer, hub *ws.Hub) *Handler {
	return &Handler{
		Games:   games,
		Catalog: catalog,
		Tokens:  tokens,
		Hub:     hub,
	}
}

// getPlayerID извлекает player_id из контекста Gin
func getPlayerID(c *gin.Context) (string, bool) {
	id := c.GetString("player_id")
	return id, id != ""
}
