package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type point struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMemory(opts ...MemoryOption) (*MemoryCache, *clock) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(append([]MemoryOption{WithMemoryCleanup(0)}, opts...)...)
	mc.now = clk.now
	return mc, clk
}

func TestMemoryCacheStringAndJSON(t *testing.T) {
	ctx := context.Background()
	mc, _ := newTestMemory()
	defer mc.Close()

	if err := mc.Set(ctx, "raw", `{"symbol":"BTCUSDT","price":1.5}`, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var s string
	if err := mc.Get(ctx, "raw", &s); err != nil || s != `{"symbol":"BTCUSDT","price":1.5}` {
		t.Fatalf("get string: %v %q", err, s)
	}
	var p point
	if err := mc.Get(ctx, "raw", &p); err != nil {
		t.Fatalf("get json: %v", err)
	}
	if p.Symbol != "BTCUSDT" || p.Price != 1.5 {
		t.Fatalf("unexpected value %+v", p)
	}

	if err := mc.Set(ctx, "struct", point{Symbol: "ETHUSDT", Price: 2}, time.Minute); err != nil {
		t.Fatalf("set struct: %v", err)
	}
	var q point
	if err := mc.Get(ctx, "struct", &q); err != nil || q.Symbol != "ETHUSDT" {
		t.Fatalf("get struct: %v %+v", err, q)
	}
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	ctx := context.Background()
	mc, clk := newTestMemory()
	defer mc.Close()

	var s string
	if err := mc.Get(ctx, "nope", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
	_ = mc.Set(ctx, "short", "x", time.Second)
	clk.advance(999 * time.Millisecond)
	if err := mc.Get(ctx, "short", &s); err != nil {
		t.Fatalf("expected hit before expiry, got %v", err)
	}
	clk.advance(time.Millisecond)
	if err := mc.Get(ctx, "short", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired miss, got %v", err)
	}
	if mc.Len() != 0 {
		t.Fatalf("expired entry should be dropped on read, len=%d", mc.Len())
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc, _ := newTestMemory(WithMemoryMaxSize(2))
	defer mc.Close()

	_ = mc.Set(ctx, "a", "1", time.Minute)
	_ = mc.Set(ctx, "b", "2", time.Minute)
	var s string
	_ = mc.Get(ctx, "a", &s) // a is now newer than b
	_ = mc.Set(ctx, "c", "3", time.Minute)

	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("least recently used key should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if ok, _ := mc.Exists(ctx, k); !ok {
			t.Fatalf("key %s missing", k)
		}
	}
	if mc.Len() != 2 {
		t.Fatalf("len = %d, want 2", mc.Len())
	}
}

func TestMemoryCacheOverwriteDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	mc, _ := newTestMemory(WithMemoryMaxSize(2))
	defer mc.Close()

	_ = mc.Set(ctx, "a", "1", time.Minute)
	_ = mc.Set(ctx, "b", "2", time.Minute)
	_ = mc.Set(ctx, "a", "3", time.Minute)

	var s string
	if err := mc.Get(ctx, "a", &s); err != nil || s != "3" {
		t.Fatalf("overwrite lost: %v %q", err, s)
	}
	if ok, _ := mc.Exists(ctx, "b"); !ok {
		t.Fatalf("overwrite should not evict other keys")
	}
}

func TestMemoryCacheSweepAndClose(t *testing.T) {
	ctx := context.Background()
	mc, clk := newTestMemory()
	_ = mc.Set(ctx, "old", "x", time.Second)
	_ = mc.Set(ctx, "new", "y", time.Hour)
	clk.advance(time.Minute)

	mc.removeExpired()
	if mc.Len() != 1 {
		t.Fatalf("len after sweep = %d, want 1", mc.Len())
	}
	if err := mc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := mc.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
