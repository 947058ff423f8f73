package usecase

import (
	"context"
	"sync"
	"time"

	"ScalpSignal/internal/domain/models"
	domrepo "ScalpSignal/internal/domain/repository"
	"ScalpSignal/internal/repository"
	"ScalpSignal/internal/services/decision"
	"ScalpSignal/internal/services/indicators"
	"ScalpSignal/internal/services/predictor"
	"ScalpSignal/pkg/cache"
	"ScalpSignal/pkg/logger"
	"ScalpSignal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

type fakeMarket struct {
	mu       sync.Mutex
	series   models.CandleSeries
	err      error
	latency  time.Duration
	latErr   error
	endpoint string
	fetches  int
	probes   []string

	delay       time.Duration
	inflight    int
	maxInflight int
}

func (f *fakeMarket) FetchCandles(_ context.Context, _ string, _ domrepo.Interval, _ int) (models.CandleSeries, error) {
	f.mu.Lock()
	f.inflight++
	if f.inflight > f.maxInflight {
		f.maxInflight = f.inflight
	}
	delay := f.delay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

func (f *fakeMarket) MeasureLatency(_ context.Context, endpoint string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes = append(f.probes, endpoint)
	return f.latency, f.latErr
}

func (f *fakeMarket) SetEndpoint(u string) {
	f.mu.Lock()
	f.endpoint = u
	f.mu.Unlock()
}

func (f *fakeMarket) Endpoint() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.endpoint
}

func (f *fakeMarket) peakFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInflight
}

func (f *fakeMarket) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeMarket) probeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.probes)
}

type sink struct {
	mu     sync.Mutex
	events []models.Event
}

func (s *sink) Publish(ev models.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *sink) logs(cat models.LogCategory) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, ev := range s.events {
		if ev.Log != nil && ev.Log.Category == cat {
			out = append(out, ev.Log.Message)
		}
	}
	return out
}

func (s *sink) frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ev := range s.events {
		if ev.Kind == models.EventFrame {
			n++
		}
	}
	return n
}

// rising returns n one-minute candles with closes 100, 101, ...
func rising(n int) models.CandleSeries {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make(models.CandleSeries, n)
	for i := range out {
		c := 100 + float64(i)
		out[i] = models.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Open:      c - 0.5, High: c + 0.5, Low: c - 1, Close: c, Volume: 10,
		}
	}
	return out
}

func defaultSettings() models.Settings {
	return models.Settings{
		Aggressiveness:   1.0,
		CommissionPct:    0.1,
		MinProfitPct:     0.2,
		PredictionLength: 5,
		ShowPredictions:  true,
		ChartType:        models.ChartCandles,
	}
}

type fixture struct {
	market   *fakeMarket
	history  *repository.MemorySignalHistory
	pipeline *SignalPipeline
	snaps    domrepo.SnapshotCache
	events   *sink
	state    *SessionState
}

func newFixture(series models.CandleSeries) *fixture {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	f := &fixture{
		market:  &fakeMarket{series: series, latency: 20 * time.Millisecond},
		history: repository.NewMemorySignalHistory(0),
		snaps:   repository.NewCacheSnapshotStore(cache.NewMemoryCache(), time.Minute),
		events:  &sink{},
	}
	f.pipeline = NewSignalPipeline(
		f.market, indicators.New(), predictor.New(), decision.New(),
		f.history, repository.NewNoopSignalPublisher(), f.snaps, m, logger.NewNop(),
	)
	f.state = NewSessionState("BTCUSDT", []string{"BTCUSDT"},
		models.Endpoint{Name: "Main", URL: "http://main"}, defaultSettings())
	return f
}

var testEndpoints = []models.Endpoint{
	{Name: "Main", URL: "http://main"},
	{Name: "Testnet", URL: "http://testnet"},
}

func (f *fixture) poller(opts ...PollerOption) *Poller {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	return NewPoller(f.pipeline, f.market, f.history, f.snaps, f.events, f.state, testEndpoints, m, logger.NewNop(), opts...)
}
