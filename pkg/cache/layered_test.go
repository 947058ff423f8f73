package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingRemote struct {
	*MemoryCache
	setErr error
	gets   int
}

func (f *failingRemote) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryCache.Set(ctx, key, value, exp)
}

func (f *failingRemote) Get(ctx context.Context, key string, dest interface{}) error {
	f.gets++
	return f.MemoryCache.Get(ctx, key, dest)
}

func TestLayeredCacheReadsThroughAndBackfills(t *testing.T) {
	ctx := context.Background()
	remote := &failingRemote{MemoryCache: NewMemoryCache()}
	lc := NewLayeredCache(remote)
	defer lc.Close()

	// Written by another process: only the remote tier has it.
	_ = remote.MemoryCache.Set(ctx, "snapshot:BTCUSDT", point{Symbol: "BTCUSDT", Price: 3}, time.Minute)

	var p point
	if err := lc.Get(ctx, "snapshot:BTCUSDT", &p); err != nil || p.Price != 3 {
		t.Fatalf("read-through: %v %+v", err, p)
	}
	if err := lc.Get(ctx, "snapshot:BTCUSDT", &p); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if remote.gets != 1 {
		t.Fatalf("remote gets = %d, want 1 after backfill", remote.gets)
	}
}

func TestLayeredCacheKeepsLocalCopyWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	remote := &failingRemote{MemoryCache: NewMemoryCache(), setErr: errors.New("connection refused")}
	lc := NewLayeredCache(remote, WithLayeredLocalTTL(time.Minute))
	defer lc.Close()

	if err := lc.Set(ctx, "k", "v", time.Hour); err == nil {
		t.Fatalf("expected remote error")
	}
	var s string
	if err := lc.Get(ctx, "k", &s); err != nil || s != "v" {
		t.Fatalf("local copy missing: %v %q", err, s)
	}
	if remote.gets != 0 {
		t.Fatalf("local hit should not reach remote")
	}
}

func TestLayeredCacheDeleteAndMiss(t *testing.T) {
	ctx := context.Background()
	remote := &failingRemote{MemoryCache: NewMemoryCache()}
	lc := NewLayeredCache(remote)
	defer lc.Close()

	_ = lc.Set(ctx, "k", "v", time.Minute)
	if ok, _ := lc.Exists(ctx, "k"); !ok {
		t.Fatalf("expected key to exist")
	}
	_ = lc.Delete(ctx, "k")
	var s string
	if err := lc.Get(ctx, "k", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestLayeredCacheLocalTTLCap(t *testing.T) {
	lc := NewLayeredCache(NewMemoryCache(), WithLayeredLocalTTL(10*time.Second))
	defer lc.Close()
	if got := lc.ttl(time.Hour); got != 10*time.Second {
		t.Fatalf("ttl(hour) = %v", got)
	}
	if got := lc.ttl(0); got != 10*time.Second {
		t.Fatalf("ttl(0) = %v", got)
	}
	if got := lc.ttl(time.Second); got != time.Second {
		t.Fatalf("ttl(second) = %v", got)
	}
}
