// Package cache opens the Redis connection backing the rate limiter.
package cache

import (
	"context"
	"fmt"
	"time"

	"boarddash/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to cfg.URL and pings it. A disabled config yields
// a nil client, which the rate limiter treats as "off".
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return rdb, nil
}
