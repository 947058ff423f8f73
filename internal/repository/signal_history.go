package repository

import (
	"sync"
	"time"

	"ScalpSignal/internal/domain/models"
	"ScalpSignal/internal/domain/repository"

	"github.com/google/uuid"
)

// MemorySignalHistory keeps emitted signals for the current session.
// A positive limit keeps only the newest records.
type MemorySignalHistory struct {
	mu      sync.RWMutex
	records []models.SignalRecord
	limit   int
	buys    int
	sells   int
	total   int
}

var _ repository.SignalHistory = (*MemorySignalHistory)(nil)

// NewMemorySignalHistory creates a history; limit <= 0 means unbounded.
func NewMemorySignalHistory(limit int) *MemorySignalHistory {
	return &MemorySignalHistory{limit: limit}
}

// Append stores rec, assigning an ID when missing. Counters keep counting
// records that were evicted by the limit.
func (h *MemorySignalHistory) Append(rec models.SignalRecord) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, rec)
	if h.limit > 0 && len(h.records) > h.limit {
		drop := len(h.records) - h.limit
		h.records = append(h.records[:0:0], h.records[drop:]...)
	}
	h.total++
	switch rec.Signal {
	case models.SignalBuy:
		h.buys++
	case models.SignalSell:
		h.sells++
	}
}

// List returns up to limit records newer than since, oldest first.
// A zero since returns everything; limit <= 0 means no limit.
func (h *MemorySignalHistory) List(since time.Time, limit int) []models.SignalRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]models.SignalRecord, 0, len(h.records))
	for _, r := range h.records {
		if !since.IsZero() && !r.Timestamp.After(since) {
			continue
		}
		out = append(out, r)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func (h *MemorySignalHistory) Counts() (total, buy, sell int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total, h.buys, h.sells
}
