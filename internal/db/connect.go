package db

import (
	"context"

	"reflex_drills/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
)

// Connect opens a pool and pings it. The database is optional for the
// service, so failures are returned instead of exiting.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create database pool")
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to ping database")
	}

	logger.Info("database connected")
	return db, nil
}
