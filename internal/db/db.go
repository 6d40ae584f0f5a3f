// Package db opens the bot's back-ends: the PostgreSQL pool holding the
// vacancies table and the optional Redis client for sessions and events.
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Backends bundles the live connections.
type Backends struct {
	Pool  *pgxpool.Pool
	Redis *redis.Client // nil when no REDIS_URL is configured
}

// Connect opens and pings PostgreSQL and, when redisURL is not empty, Redis.
func Connect(ctx context.Context, databaseURL, redisURL string, log *slog.Logger) (*Backends, error) {
	log.Info("connecting to PostgreSQL")
	pool, err := newPostgresPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	b := &Backends{Pool: pool}

	if redisURL == "" {
		log.Info("REDIS_URL not set, sessions stay in memory")
		return b, nil
	}

	log.Info("connecting to Redis")
	b.Redis, err = newRedisClient(ctx, redisURL)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

// Close releases every connection.
func (b *Backends) Close() {
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
	b.Pool.Close()
}

func newPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}

func newRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}
