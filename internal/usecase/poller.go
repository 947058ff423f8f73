package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ScalpSignal/internal/domain/models"
	domrepo "ScalpSignal/internal/domain/repository"
	"ScalpSignal/pkg/logger"
	"ScalpSignal/pkg/util"
)

var (
	ErrAlreadyRunning  = errors.New("session already running")
	ErrNotRunning      = errors.New("session not running")
	ErrClosed          = errors.New("poller closed")
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	ErrInvalidSymbol   = errors.New("invalid symbol")
)

// EventSink receives events for presenters. It must not block.
type EventSink interface {
	Publish(ev models.Event)
}

// Poller drives the signal pipeline on a fixed cadence while the session
// is running. Stop is cooperative: the loop notices it at its next check
// point, which is at most one sleep step away.
type Poller struct {
	pipeline  *SignalPipeline
	market    domrepo.MarketData
	history   domrepo.SignalHistory
	snapshots domrepo.SnapshotCache
	events    EventSink
	state     *SessionState
	endpoints []models.Endpoint
	metrics   domrepo.Metrics
	log       *logger.Logger

	cycleDelay   time.Duration
	sleepStep    time.Duration
	errorBackoff time.Duration
	latencyEvery int

	mu      sync.Mutex
	stopCh  chan struct{}
	done    chan struct{} // closed when the newest loop has exited
	closing bool
	wg      sync.WaitGroup
}

type PollerOption func(*Poller)

// WithCycleDelay sets the pause between successful cycles.
func WithCycleDelay(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.cycleDelay = d
		}
	}
}

// WithSleepStep sets the granularity of the inter-cycle sleep.
func WithSleepStep(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.sleepStep = d
		}
	}
}

// WithErrorBackoff sets the pause after a failed cycle.
func WithErrorBackoff(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.errorBackoff = d
		}
	}
}

// WithLatencyEvery sets how many cycles pass between latency probes.
func WithLatencyEvery(n int) PollerOption {
	return func(p *Poller) {
		if n > 0 {
			p.latencyEvery = n
		}
	}
}

func NewPoller(
	pipeline *SignalPipeline,
	market domrepo.MarketData,
	history domrepo.SignalHistory,
	snapshots domrepo.SnapshotCache,
	events EventSink,
	state *SessionState,
	endpoints []models.Endpoint,
	metrics domrepo.Metrics,
	log *logger.Logger,
	opts ...PollerOption,
) *Poller {
	p := &Poller{
		pipeline:     pipeline,
		market:       market,
		history:      history,
		snapshots:    snapshots,
		events:       events,
		state:        state,
		endpoints:    append([]models.Endpoint(nil), endpoints...),
		metrics:      metrics,
		log:          log,
		cycleDelay:   5 * time.Second,
		sleepStep:    time.Second,
		errorBackoff: 5 * time.Second,
		latencyEvery: 10,
	}
	for _, opt := range opts {
		opt(p)
	}
	market.SetEndpoint(state.Endpoint().URL)
	return p
}

// Start moves the session to RUNNING and launches the cycle loop.
// ctx bounds the loop lifetime in addition to Stop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		return ErrClosed
	}
	if !p.state.setRunning(true) {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	prev := p.done
	p.stopCh = stop
	p.done = done
	p.wg.Add(1)
	p.mu.Unlock()

	ep := p.state.Endpoint()
	symbol := p.state.Symbol()
	p.log.Info("session started", logger.String("symbol", symbol), logger.String("endpoint", ep.Name))
	p.emitLog(models.LogInfo, "Starting analysis for %s", symbol)
	p.emitLog(models.LogInfo, "Using endpoint %s", ep.Name)
	if !p.pipeline.ModelTrained() {
		p.emitLog(models.LogPrediction, "Model will train on the first full candle window")
	}
	p.publishStats()

	go p.loop(ctx, stop, prev, done)
	return nil
}

// Stop moves the session to STOPPED. It does not wait for the loop; use Wait.
// A Start that follows immediately is safe: the new loop runs its first cycle
// only after the old one has exited.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if !p.state.setRunning(false) {
		p.mu.Unlock()
		return ErrNotRunning
	}
	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
	p.mu.Unlock()

	p.log.Info("session stopped")
	p.emitLog(models.LogInfo, "Analysis stopped by user")
	p.publishStats()
	return nil
}

// Wait blocks until the loop and any in-flight latency probes have returned.
func (p *Poller) Wait() { p.wg.Wait() }

// Shutdown stops the session if running and waits up to ctx for the loop to exit.
// Later Start calls and latency probes are refused.
func (p *Poller) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closing = true
	p.mu.Unlock()

	if err := p.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
		return err
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("poller shutdown: %w", ctx.Err())
	}
}

func (p *Poller) loop(ctx context.Context, stop, prev, done chan struct{}) {
	defer p.wg.Done()
	defer close(done)
	defer p.release(stop)

	if prev != nil {
		select {
		case <-prev:
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
	for {
		if !active(ctx, stop) {
			return
		}
		if err := p.cycle(ctx); err != nil {
			p.log.Error("cycle failed", logger.Error(err))
			p.emitLog(models.LogError, "Cycle failed: %v", err)
			if !p.sleep(ctx, stop, p.errorBackoff) {
				return
			}
			continue
		}
		if !p.sleep(ctx, stop, p.cycleDelay) {
			return
		}
	}
}

// release marks the session stopped when the loop exits on its own,
// for example because ctx was cancelled.
func (p *Poller) release(stop chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopCh == stop {
		p.stopCh = nil
		p.state.setRunning(false)
	}
}

func (p *Poller) cycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.RecordError("cycle_panic")
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	if p.state.tick(p.latencyEvery) {
		p.probeAsync(ctx)
	}
	p.state.incCycles()

	req := CycleRequest{
		Symbol:   p.state.Symbol(),
		Endpoint: p.state.Endpoint().Name,
		Settings: p.state.Settings(),
	}
	res, err := p.pipeline.RunCycle(ctx, req)
	if err != nil {
		return err
	}
	if res.Indicators != nil {
		p.events.Publish(models.NewFrameEvent(res.Frame(req)))
	}
	for i := range res.Logs {
		entry := res.Logs[i]
		p.events.Publish(models.Event{Kind: models.EventLog, Log: &entry})
	}
	p.publishStats()
	return nil
}

// sleep waits d in sleepStep increments and reports false if the loop must exit.
func (p *Poller) sleep(ctx context.Context, stop <-chan struct{}, d time.Duration) bool {
	for remaining := d; remaining > 0; remaining -= p.sleepStep {
		step := p.sleepStep
		if remaining < step {
			step = remaining
		}
		t := time.NewTimer(step)
		select {
		case <-stop:
			t.Stop()
			return false
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}
	}
	return active(ctx, stop)
}

func active(ctx context.Context, stop <-chan struct{}) bool {
	select {
	case <-stop:
		return false
	case <-ctx.Done():
		return false
	default:
		return true
	}
}

func (p *Poller) probeAsync(ctx context.Context) {
	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()
	go func() {
		defer p.wg.Done()
		_, _ = p.ProbeLatency(ctx)
	}()
}

// ProbeLatency measures the active endpoint and records the result in the session.
func (p *Poller) ProbeLatency(ctx context.Context) (time.Duration, error) {
	ep := p.state.Endpoint()
	d, err := p.market.MeasureLatency(ctx, ep.URL)

	// The endpoint may have changed while the probe was in flight.
	if p.state.Endpoint().Name == ep.Name {
		p.state.SetLatency(d, err)
	}
	if err != nil {
		p.metrics.RecordError("latency")
		p.log.Warn("latency probe failed", logger.String("endpoint", ep.Name), logger.Error(err))
		p.emitLog(models.LogError, "Connection error on %s: %v", ep.Name, err)
		p.publishStats()
		return 0, fmt.Errorf("probe %s: %w", ep.Name, err)
	}
	p.metrics.RecordEndpointLatency(ep.Name, d)
	p.log.Debug("latency measured", logger.String("endpoint", ep.Name), logger.Duration("latency", d))
	p.publishStats()
	return d, nil
}

// SetEndpoint switches to a configured endpoint by name and probes it.
func (p *Poller) SetEndpoint(ctx context.Context, name string) (models.Endpoint, error) {
	var ep models.Endpoint
	found := false
	for _, e := range p.endpoints {
		if e.Name == name {
			ep, found = e, true
			break
		}
	}
	if !found {
		return models.Endpoint{}, fmt.Errorf("%w: %s", ErrUnknownEndpoint, name)
	}
	p.market.SetEndpoint(ep.URL)
	p.state.SetEndpoint(ep)
	p.log.Info("endpoint changed", logger.String("endpoint", ep.Name), logger.String("url", ep.URL))
	p.emitLog(models.LogInfo, "Switched to endpoint %s", ep.Name)
	p.probeAsync(ctx)
	return ep, nil
}

// NextEndpoint switches to the endpoint after the active one, wrapping around.
func (p *Poller) NextEndpoint(ctx context.Context) (models.Endpoint, error) {
	if len(p.endpoints) == 0 {
		return models.Endpoint{}, ErrUnknownEndpoint
	}
	cur := p.state.Endpoint().Name
	next := p.endpoints[0]
	for i, e := range p.endpoints {
		if e.Name == cur {
			next = p.endpoints[(i+1)%len(p.endpoints)]
			break
		}
	}
	return p.SetEndpoint(ctx, next.Name)
}

// SetSymbol switches the polled symbol. Unknown but well-formed symbols are
// added to the symbol list.
func (p *Poller) SetSymbol(symbol string) (string, error) {
	sym := util.NormalizeSymbol(symbol)
	if !util.IsValidSymbol(sym) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	if sym == p.state.Symbol() {
		return sym, nil
	}
	p.state.SetSymbol(sym)
	p.log.Info("symbol changed", logger.String("symbol", sym))
	p.emitLog(models.LogInfo, "Symbol set to %s", sym)
	return sym, nil
}

// UpdateSettings applies a partial settings update. Prediction length is
// fixed at construction and is not part of the update.
func (p *Poller) UpdateSettings(req *models.UpdateSettingsRequest) models.Settings {
	s := p.state.UpdateSettings(req.Apply)
	p.log.Info("settings updated",
		logger.Float64("aggressiveness", s.Aggressiveness),
		logger.Float64("commission_pct", s.CommissionPct),
		logger.Float64("min_profit_pct", s.MinProfitPct),
		logger.Bool("show_predictions", s.ShowPredictions),
		logger.String("chart_type", string(s.ChartType)),
	)
	return s
}

// ToggleChartType flips between candles and line.
func (p *Poller) ToggleChartType() models.Settings {
	return p.state.UpdateSettings(func(s models.Settings) models.Settings {
		if s.ChartType == models.ChartLine {
			s.ChartType = models.ChartCandles
		} else {
			s.ChartType = models.ChartLine
		}
		return s
	})
}

// TogglePredictions flips the show-predictions setting.
func (p *Poller) TogglePredictions() models.Settings {
	return p.state.UpdateSettings(func(s models.Settings) models.Settings {
		s.ShowPredictions = !s.ShowPredictions
		return s
	})
}

func (p *Poller) Stats() models.Stats {
	total, buy, sell := p.history.Counts()
	v := p.state.View()
	return models.Stats{
		TotalSignals:   total,
		BuyCount:       buy,
		SellCount:      sell,
		ModelTrained:   p.pipeline.ModelTrained(),
		LatencyMs:      v.LatencyMs,
		LatencyQuality: v.LatencyQuality,
		EndpointName:   v.Endpoint.Name,
		Running:        v.Running,
		Cycles:         v.Cycles,
	}
}

func (p *Poller) Session() models.SessionView { return p.state.View() }

func (p *Poller) Running() bool { return p.state.Running() }

// History returns emitted signals newer than since, oldest first.
func (p *Poller) History(since time.Time, limit int) []models.SignalRecord {
	return p.history.List(since, limit)
}

// Snapshot returns the cached last cycle for symbol, or the active symbol when empty.
func (p *Poller) Snapshot(ctx context.Context, symbol string) (*models.Snapshot, error) {
	if symbol == "" {
		symbol = p.state.Symbol()
	}
	return p.snapshots.Latest(ctx, util.NormalizeSymbol(symbol))
}

func (p *Poller) Endpoints() []models.Endpoint {
	return append([]models.Endpoint(nil), p.endpoints...)
}

func (p *Poller) Symbols() []string { return p.state.Symbols() }

func (p *Poller) publishStats() {
	p.events.Publish(models.NewStatsEvent(p.Stats()))
}

func (p *Poller) emitLog(cat models.LogCategory, format string, args ...interface{}) {
	p.events.Publish(models.NewLogEvent(cat, fmt.Sprintf(format, args...)))
}
