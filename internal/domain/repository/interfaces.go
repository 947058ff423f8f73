package repository

import (
	"context"
	"errors"
	"time"

	"ScalpSignal/internal/domain/models"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// MarketData fetches candles from the active exchange endpoint.
type MarketData interface {
	FetchCandles(ctx context.Context, symbol string, interval Interval, limit int) (models.CandleSeries, error)
	MeasureLatency(ctx context.Context, endpoint string) (time.Duration, error)
	SetEndpoint(baseURL string)
	Endpoint() string
}

// SignalHistory is the in-process list of emitted signals.
type SignalHistory interface {
	Append(rec models.SignalRecord)
	List(since time.Time, limit int) []models.SignalRecord
	Counts() (total, buy, sell int)
}

type SignalPublisher interface {
	Publish(ctx context.Context, rec *models.SignalRecord) error
	Close() error
}

type SnapshotCache interface {
	Save(ctx context.Context, snap *models.Snapshot) error
	Latest(ctx context.Context, symbol string) (*models.Snapshot, error)
}

// Presenter receives events on the dispatcher goroutine.
type Presenter interface {
	Handle(ev models.Event)
}

type Metrics interface {
	RecordCycle(result string)
	RecordSignal(symbol string, signal models.SignalType)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordEndpointLatency(endpoint string, d time.Duration)
}
