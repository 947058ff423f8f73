package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ScalpSignal/internal/domain/models"
	"ScalpSignal/internal/domain/repository"
	"ScalpSignal/pkg/cache"
)

const snapshotKeyPrefix = "snapshot"

// CacheSnapshotStore keeps the last cycle result per symbol in a cache.Service,
// which is either the in-process memory cache or Redis.
type CacheSnapshotStore struct {
	c   cache.Service
	ttl time.Duration
}

// NewCacheSnapshotStore creates a snapshot store.
func NewCacheSnapshotStore(c cache.Service, ttl time.Duration) repository.SnapshotCache {
	return &CacheSnapshotStore{c: c, ttl: ttl}
}

// Save stores snap as JSON so both cache backends round-trip it the same way.
func (s *CacheSnapshotStore) Save(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil || snap.Symbol == "" {
		return fmt.Errorf("save snapshot: symbol is required")
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := s.c.Set(ctx, cache.GenerateKey(snapshotKeyPrefix, snap.Symbol), string(b), s.ttl); err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.Symbol, err)
	}
	return nil
}

func (s *CacheSnapshotStore) Latest(ctx context.Context, symbol string) (*models.Snapshot, error) {
	var raw string
	if err := s.c.Get(ctx, cache.GenerateKey(snapshotKeyPrefix, symbol), &raw); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, repository.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot %s: %w", symbol, err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", symbol, err)
	}
	return &snap, nil
}
