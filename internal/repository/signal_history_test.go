package repository

import (
	"sync"
	"testing"
	"time"

	"ScalpSignal/internal/domain/models"
)

func record(sig models.SignalType, at time.Time) models.SignalRecord {
	return models.SignalRecord{Timestamp: at, Symbol: "BTCUSDT", Signal: sig, Confidence: 0.8, Price: 100}
}

func TestHistoryAppendAndCounts(t *testing.T) {
	h := NewMemorySignalHistory(0)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	h.Append(record(models.SignalBuy, base))
	h.Append(record(models.SignalSell, base.Add(time.Minute)))
	h.Append(record(models.SignalBuy, base.Add(2*time.Minute)))

	total, buy, sell := h.Counts()
	if total != 3 || buy != 2 || sell != 1 {
		t.Fatalf("counts = %d/%d/%d", total, buy, sell)
	}
	all := h.List(time.Time{}, 0)
	if len(all) != 3 || all[0].ID == "" || all[0].ID == all[1].ID {
		t.Fatalf("unexpected records %+v", all)
	}
	if got := h.List(base, 0); len(got) != 2 {
		t.Fatalf("since filter returned %d", len(got))
	}
	if got := h.List(time.Time{}, 1); len(got) != 1 || got[0].Signal != models.SignalBuy || !got[0].Timestamp.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("limit must keep newest, got %+v", got)
	}
}

func TestHistoryLimitKeepsNewest(t *testing.T) {
	h := NewMemorySignalHistory(2)
	base := time.Now()
	for i := 0; i < 5; i++ {
		h.Append(record(models.SignalBuy, base.Add(time.Duration(i)*time.Second)))
	}
	got := h.List(time.Time{}, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if !got[1].Timestamp.Equal(base.Add(4 * time.Second)) {
		t.Fatalf("newest record missing")
	}
	if total, _, _ := h.Counts(); total != 5 {
		t.Fatalf("total must include evicted records, got %d", total)
	}
}

func TestHistoryConcurrentAppend(t *testing.T) {
	h := NewMemorySignalHistory(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Append(record(models.SignalSell, time.Now()))
				_ = h.List(time.Time{}, 10)
			}
		}()
	}
	wg.Wait()
	if total, _, sell := h.Counts(); total != 400 || sell != 400 {
		t.Fatalf("counts = %d/%d", total, sell)
	}
}
