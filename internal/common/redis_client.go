package common

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"greek-row/chapterhouse/internal/config"
	"greek-row/chapterhouse/internal/logging"
)

// NewRedisClient builds a client for cfg and pings it once
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	logging.Info("Initializing Redis client", "addr", cfg.Addr(), "db", cfg.DB)

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logging.Info("Connected to Redis")
	return client, nil
}
