package cache

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/checkout/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestInMemoryCacheSetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(config.GetDefaultConfig())

	key := GenerateKey(PrefixProfile, "user-1")
	assert.Equal(t, "profile:v1::user-1", key)

	c.Set(ctx, key, "Bat", 0)
	v, ok := c.Get(ctx, key)
	assert.True(t, ok)
	assert.Equal(t, "Bat", v)

	c.Delete(ctx, key)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
}

func TestInMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(config.GetDefaultConfig())

	c.Set(ctx, "k", 1, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheDeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(config.GetDefaultConfig())

	for _, k := range PrincipalKeys("user-1") {
		c.Set(ctx, k, true, 0)
	}
	c.Set(ctx, GenerateKey(PrefixProfile, "user-2"), true, 0)

	c.DeleteByPrefix(ctx, PrefixRole)
	_, ok := c.Get(ctx, GenerateKey(PrefixRole, "user-1"))
	assert.False(t, ok)
	_, ok = c.Get(ctx, GenerateKey(PrefixProfile, "user-1"))
	assert.True(t, ok)

	c.Flush(ctx)
	_, ok = c.Get(ctx, GenerateKey(PrefixProfile, "user-2"))
	assert.False(t, ok)
}

func TestDisabledCacheNeverHits(t *testing.T) {
	ctx := context.Background()
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = false
	c := NewInMemoryCache(cfg)

	c.Set(ctx, "k", 1, 0)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}
