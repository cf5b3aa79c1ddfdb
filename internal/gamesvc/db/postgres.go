package db

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const connectTimeout = 5 * time.Second

var pool *pgxpool.Pool

// Connect initializes the connection pool from POSTGRES_URL.
func Connect() (*pgxpool.Pool, error) {
	dsn := os.Getenv("POSTGRES_URL")

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	// Try pinging to make sure it's valid
	if err := p.Ping(ctx); err != nil {
		return nil, err
	}

	pool = p

	return p, nil
}

// ClosePool is for graceful shutdown
func ClosePool() {
	if pool != nil {
		pool.Close()
	}
}
