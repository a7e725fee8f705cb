package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reflex_drills/internal/catalog"
	"reflex_drills/internal/config"
	"reflex_drills/internal/db"
	httpServer "reflex_drills/internal/http"
	"reflex_drills/internal/http/middleware"
	"reflex_drills/internal/logger"
	"reflex_drills/internal/service"
	"reflex_drills/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx := context.Background()

	var dbPool *pgxpool.Pool
	var source catalog.Source
	switch cfg.CatalogSource {
	case config.CatalogFile:
		source = catalog.FileSource{Path: cfg.CatalogPath}
	case config.CatalogPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", "error", err)
		}
		defer pool.Close()
		dbPool = pool
		source = catalog.NewPostgresSource(pool)
	default:
		source = catalog.EmbeddedSource{}
	}

	scenarios, err := source.Load(ctx)
	if err != nil {
		logger.Fatal("catalog load failed", "source", cfg.CatalogSource, "error", err)
	}

	games, err := config.LoadGames(cfg.GamesConfig)
	if err != nil {
		logger.Fatal("game config load failed", "path", cfg.GamesConfig, "error", err)
	}
	if err := games.Validate(len(scenarios)); err != nil {
		logger.Fatal("game config rejected", "error", err)
	}

	tokens, err := service.NewTokenIssuer(cfg.JWTSecret, service.DefaultTokenTTL)
	if err != nil {
		logger.Fatal("token issuer", "error", err)
	}

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	hub := ws.NewHub(games, scenarios)
	hub.StartCleanup(time.Minute)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Config:  cfg,
		Games:   games,
		Catalog: scenarios,
		Tokens:  tokens,
		Hub:     hub,
		DB:      dbPool,
		Version: version,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "scenarios", len(scenarios), "catalog", cfg.CatalogSource)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
