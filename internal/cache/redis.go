package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// scanBatchSize is the COUNT hint for SCAN during prefix sweeps.
	scanBatchSize = 100

	// sweepTimeout bounds a full prefix sweep.
	sweepTimeout = 5 * time.Second
)

// RedisCache is a Redis-backed implementation of Cache.
// Every operation is bounded by opTimeout so a slow or unreachable Redis
// degrades the request to a cache miss instead of blocking it.
type RedisCache struct {
	client    *redis.Client
	opTimeout time.Duration
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	OpTimeout time.Duration
}

// NewRedisCache creates a Redis-backed cache and verifies connectivity.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 5,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = 250 * time.Millisecond
	}

	log.Printf("[RedisCache] Started - addr:%s db:%d op_timeout:%v", cfg.Addr, cfg.DB, opTimeout)
	return &RedisCache{client: client, opTimeout: opTimeout}, nil
}

// Get retrieves a value by key. Returns ErrCacheMiss when the key is
// absent or expired.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set stores a value with the given TTL, replacing any existing entry.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a single entry by key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	return c.client.Del(ctx, key).Err()
}

// DeletePrefix removes every entry whose key starts with prefix using
// SCAN+DEL, so the sweep never blocks Redis the way KEYS would.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", scanBatchSize).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close closes the underlying Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ensure RedisCache implements Cache
var _ Cache = (*RedisCache)(nil)
