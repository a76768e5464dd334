package cache

import (
	"context"
	"time"

	redisWrapper "github.com/pagehub/contentd/common/redis"
	"github.com/redis/go-redis/v9"
)

// RedisCache is a Redis-backed cache implementation for production use
type RedisCache struct {
	client *redisWrapper.Client
	log    redisWrapper.Logger
}

// NewRedisCache creates a Redis-backed cache around an existing client
func NewRedisCache(redisClient *redis.Client, log redisWrapper.Logger) *RedisCache {
	return &RedisCache{
		client: redisWrapper.NewClient(redisClient, log),
		log:    log,
	}
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.client.Get(ctx, key)
}

// Set stores a value in Redis with TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.SetWithExpiry(ctx, key, value, ttl)
}

// Delete removes a value from Redis
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Delete(ctx, key)
}

// Close closes the underlying Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
