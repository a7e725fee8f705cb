package config

import (
	"os"
	"strconv"
	"strings"

	"reflex_drills/internal/logger"

	"github.com/joho/godotenv"
)

const (
	CatalogEmbedded = "embedded"
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
)

type Config struct {
	AppPort       string
	JWTSecret     string
	LogLevel      string
	LogJSON       bool
	AllowedOrigin string

	// Redis backs the rate limiter; empty Addr falls back to in-process limits.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIRateLimit  int
	APIRateWindow int // seconds

	CatalogSource string
	CatalogPath   string
	DatabaseURL   string

	// GamesConfig is an optional YAML file overriding the game tuning.
	GamesConfig string
}

// Load reads the configuration from the environment (and .env when present).
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "info"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			redisDB = n
		}
	}

	apiRateLimit := 120 // requests per window
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateLimit = n
		}
	}

	apiRateWindow := 60
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateWindow = n
		}
	}

	catalogSource := strings.ToLower(os.Getenv("CATALOG_SOURCE"))
	if catalogSource == "" {
		catalogSource = CatalogEmbedded
	}
	catalogPath := os.Getenv("CATALOG_PATH")
	dbURL := os.Getenv("DATABASE_URL")

	switch catalogSource {
	case CatalogEmbedded:
	case CatalogFile:
		if catalogPath == "" {
			logger.Fatal("CATALOG_PATH is not set", "catalog_source", catalogSource)
		}
	case CatalogPostgres:
		if dbURL == "" {
			logger.Fatal("DATABASE_URL is not set", "catalog_source", catalogSource)
		}
	default:
		logger.Fatal("unknown CATALOG_SOURCE", "catalog_source", catalogSource)
	}

	return &Config{
		AppPort:       port,
		JWTSecret:     jwtSecret,
		LogLevel:      logLevel,
		LogJSON:       os.Getenv("LOG_JSON") == "true",
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		APIRateLimit:  apiRateLimit,
		APIRateWindow: apiRateWindow,
		CatalogSource: catalogSource,
		CatalogPath:   catalogPath,
		DatabaseURL:   dbURL,
		GamesConfig:   os.Getenv("GAMES_CONFIG"),
	}
}
