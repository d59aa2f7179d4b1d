package auth

import (
	"context"
	"testing"
	"time"
)

// Redis 缺席时缓存必须静默退化为全部未命中
func TestTokenCacheWithoutRedis(t *testing.T) {
	c := NewTokenCache(nil, NewConsistentHashRing([]string{"n1"}, 10), time.Minute)

	claims, hit, err := c.Get(context.Background(), "some-token")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if hit || claims != nil {
		t.Fatalf("unexpected cache hit without redis")
	}

	if err := c.Set(context.Background(), "some-token", &Claims{UserID: 1}); err != nil {
		t.Fatalf("set: %v", err)
	}
}

func TestTokenCacheKeyStable(t *testing.T) {
	c := NewTokenCache(nil, NewConsistentHashRing([]string{"n1", "n2"}, 10), time.Minute)
	k1 := c.cacheKey("token-a")
	k2 := c.cacheKey("token-a")
	if k1 != k2 {
		t.Fatalf("cache key unstable: %q vs %q", k1, k2)
	}
	if k1 == c.cacheKey("token-b") {
		t.Fatalf("different tokens share a cache key")
	}
}

func TestNewTokenCacheDefaults(t *testing.T) {
	c := NewTokenCache(nil, nil, 0)
	if c.ring == nil {
		t.Fatalf("ring not defaulted")
	}
	if c.ttl <= 0 {
		t.Fatalf("ttl not defaulted")
	}
}
