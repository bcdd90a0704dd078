package common

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"greek-row/chapterhouse/internal/logging"
)

// RedisCacheService implements CacheInterface using Redis
type RedisCacheService struct {
	client  *redis.Client
	timeout time.Duration
}

var _ CacheInterface = (*RedisCacheService)(nil)

func NewRedisCacheService(client *redis.Client) *RedisCacheService {
	return &RedisCacheService{client: client, timeout: 2 * time.Second}
}

func (r *RedisCacheService) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

// Set stores value as JSON. Failures are logged; a cache miss is always safe.
func (r *RedisCacheService) Set(key string, value interface{}, duration time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.Warn("Redis cache: failed to marshal value", "key", key, "error", err)
		return
	}

	ctx, cancel := r.ctx()
	defer cancel()
	if err := r.client.Set(ctx, key, data, duration).Err(); err != nil {
		logging.Warn("Redis cache: failed to set key", "key", key, "error", err)
	}
}

func (r *RedisCacheService) Get(key string) (interface{}, bool) {
	var result interface{}
	if !r.GetInto(key, &result) {
		return nil, false
	}
	return result, true
}

func (r *RedisCacheService) GetInto(key string, dst interface{}) bool {
	ctx, cancel := r.ctx()
	defer cancel()

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		logging.Warn("Redis cache: failed to get key", "key", key, "error", err)
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		logging.Warn("Redis cache: failed to unmarshal value", "key", key, "error", err)
		return false
	}
	return true
}

func (r *RedisCacheService) Delete(key string) {
	ctx, cancel := r.ctx()
	defer cancel()
	if err := r.client.Del(ctx, key).Err(); err != nil {
		logging.Warn("Redis cache: failed to delete key", "key", key, "error", err)
	}
}

// Close is a no-op; the shared client is closed by its owner
func (r *RedisCacheService) Close() error {
	return nil
}
