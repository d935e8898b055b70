package cache

import (
	"context"
	"testing"
	"time"
)

func redisAvailable(t *testing.T) *RedisCache {
	t.Helper()
	c, err := NewRedisCache(RedisConfig{Addr: "localhost:6379"})
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return c
}

func TestRedisCache_GetSetDelete(t *testing.T) {
	c := redisAvailable(t)
	defer c.Close()
	ctx := context.Background()
	defer c.DeletePrefix(ctx, "shopstock:test:")

	key := "shopstock:test:k"
	if _, err := c.Get(ctx, key); err != ErrCacheMiss {
		t.Fatalf("Get on empty key = %v, want ErrCacheMiss", err)
	}

	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("Get = %q, want %q", got, "v")
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, key); err != ErrCacheMiss {
		t.Fatalf("Get after delete = %v, want ErrCacheMiss", err)
	}
}

func TestRedisCache_DeletePrefix(t *testing.T) {
	c := redisAvailable(t)
	defer c.Close()
	ctx := context.Background()
	defer c.DeletePrefix(ctx, "shopstock:test:")

	c.Set(ctx, "shopstock:test:items:a", []byte("1"), time.Minute)
	c.Set(ctx, "shopstock:test:items:b", []byte("2"), time.Minute)
	c.Set(ctx, "shopstock:test:item:x", []byte("3"), time.Minute)

	if err := c.DeletePrefix(ctx, "shopstock:test:items:"); err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}

	if _, err := c.Get(ctx, "shopstock:test:items:a"); err != ErrCacheMiss {
		t.Errorf("items:a survived the sweep")
	}
	if _, err := c.Get(ctx, "shopstock:test:items:b"); err != ErrCacheMiss {
		t.Errorf("items:b survived the sweep")
	}
	if _, err := c.Get(ctx, "shopstock:test:item:x"); err != nil {
		t.Errorf("item:x removed by the sweep: %v", err)
	}
}
