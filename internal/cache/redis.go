package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefix for memoized token counts
const countKeyPrefix = "tokens:"

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{
		client: client,
	}, nil
}

// GetCount retrieves a memoized token count by key
func (c *RedisCache) GetCount(ctx context.Context, key string) (int, bool, error) {
	val, err := c.client.Get(ctx, countKeyPrefix+key).Result()
	if err == redis.Nil {
		return 0, false, nil // Cache miss
	}
	if err != nil {
		return 0, false, err
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// SetCount stores a token count. Counts are deterministic per key, so no
// TTL is set.
func (c *RedisCache) SetCount(ctx context.Context, key string, count int) error {
	return c.client.Set(ctx, countKeyPrefix+key, strconv.Itoa(count), 0).Err()
}

// Close closes the cache connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
