package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// LayeredCache fronts a shared remote cache with a small local LRU.
// Writes go to both tiers; reads try local first and backfill on a remote hit.
type LayeredCache struct {
	local    *MemoryCache
	remote   Service
	localTTL time.Duration
}

// NewLayeredCache wraps remote, usually a *RedisCache.
func NewLayeredCache(remote Service, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		MemoryMaxSize: 256,
		LocalTTL:      30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &LayeredCache{
		local:    NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize), WithMemoryCleanup(time.Minute)),
		remote:   remote,
		localTTL: cfg.LocalTTL,
	}
}

func (lc *LayeredCache) ttl(expiration time.Duration) time.Duration {
	if lc.localTTL > 0 && (expiration <= 0 || expiration > lc.localTTL) {
		return lc.localTTL
	}
	return expiration
}

// Set writes the local tier even if the remote write fails, so this process
// keeps serving its own latest value during a remote outage.
func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	_ = lc.local.Set(ctx, key, data, lc.ttl(expiration))
	if err := lc.remote.Set(ctx, key, data, expiration); err != nil {
		return fmt.Errorf("layered cache remote set: %w", err)
	}
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	var raw string
	err := lc.local.Get(ctx, key, &raw)
	if errors.Is(err, ErrCacheMiss) {
		if err = lc.remote.Get(ctx, key, &raw); err != nil {
			return err
		}
		_ = lc.local.Set(ctx, key, raw, lc.localTTL)
	}
	if err != nil {
		return err
	}
	return decode([]byte(raw), dest)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.local.Delete(ctx, keys...)
	return lc.remote.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, _ := lc.local.Exists(ctx, keys...); ok {
		return true, nil
	}
	return lc.remote.Exists(ctx, keys...)
}

// Close closes both tiers.
func (lc *LayeredCache) Close() error {
	_ = lc.local.Close()
	if c, ok := lc.remote.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
