package http

import (
	"time"

	"reflex_drills/internal/config"
	"reflex_drills/internal/game"
	"reflex_drills/internal/http/handlers"
	"reflex_drills/internal/http/middleware"
	"reflex_drills/internal/service"
	"reflex_drills/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Per-player limit on WebSocket handshakes.
const (
	wsRateLimit  = 30
	wsRateWindow = time.Minute
)

// Deps is everything the routes need. DB may be nil.
type Deps struct {
	Config  *config.Config
	Games   config.Games
	Catalog []game.Scenario
	Tokens  *service.TokenIssuer
	Hub     *ws.Hub
	DB      *pgxpool.Pool
	Version string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := handlers.NewHandler(d.Games, d.Catalog, d.Tokens, d.Hub)
	healthHandler := handlers.NewHealthHandler(d.DB, d.Hub, d.Version)

	apiRateLimit := 120
	apiRateWindow := time.Minute
	allowedOrigin := ""
	if d.Config != nil {
		apiRateLimit = d.Config.APIRateLimit
		apiRateWindow = time.Duration(d.Config.APIRateWindow) * time.Second
		allowedOrigin = d.Config.AllowedOrigin
	}

	r.Use(middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))
	registerAPIRoutes(v1, h, d.Tokens)

	// WebSocket sessions
	r.GET("/ws",
		middleware.JWT(d.Tokens),
		middleware.PlayerRateLimit(wsRateLimit, wsRateWindow),
		ws.HandleWS(d.Hub, d.Tokens, allowedOrigin),
	)
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, tokens *service.TokenIssuer) {
	// Auth
	api.POST("/auth/guest", h.GuestAuth)
	api.GET("/me", middleware.JWT(tokens), h.Me)

	// Drills
	api.GET("/games", h.ListGames)
	api.GET("/games/:kind", h.GetGame)
	api.GET("/scenarios", h.ListScenarios)
}
