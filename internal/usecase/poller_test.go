package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"ScalpSignal/internal/domain/models"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestPollerStopDuringSleepReturnsQuickly(t *testing.T) {
	f := newFixture(rising(60))
	p := f.poller(WithCycleDelay(5*time.Second), WithSleepStep(time.Second))

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return p.Stats().Cycles >= 1 })
	// Let the loop enter its inter-cycle sleep.
	time.Sleep(50 * time.Millisecond)

	begin := time.Now()
	if err := p.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	p.Wait()
	if elapsed := time.Since(begin); elapsed > time.Second {
		t.Fatalf("loop took %s to exit", elapsed)
	}
	if p.Running() {
		t.Fatalf("session still running")
	}
	if f.events.frames() == 0 {
		t.Fatalf("expected a frame event")
	}
	if len(f.events.logs(models.LogBuy)) != 1 {
		t.Fatalf("expected one BUY log, got %v", f.events.logs(models.LogBuy))
	}
}

func TestPollerStartStopTransitions(t *testing.T) {
	f := newFixture(rising(60))
	p := f.poller(WithCycleDelay(time.Hour))

	if err := p.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := p.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	// A stopped session can be started again.
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestPollerKeepsRunningAfterFailures(t *testing.T) {
	f := newFixture(nil)
	f.market.err = errors.New("timeout")
	p := f.poller(WithErrorBackoff(5*time.Millisecond), WithSleepStep(time.Millisecond))

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return p.Stats().Cycles >= 3 })
	_ = p.Stop()
	p.Wait()

	if len(f.events.logs(models.LogError)) < 3 {
		t.Fatalf("expected an error log per failed cycle")
	}
}

func TestPollerProbesLatencyPeriodically(t *testing.T) {
	f := newFixture(rising(60))
	p := f.poller(WithCycleDelay(time.Millisecond), WithSleepStep(time.Millisecond), WithLatencyEvery(2))

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return f.market.probeCount() >= 2 })
	_ = p.Stop()
	p.Wait()

	st := p.Stats()
	if st.LatencyMs != 20 || st.LatencyQuality != models.LatencyIdeal {
		t.Fatalf("latency not recorded: %+v", st)
	}
}

func TestPollerContextCancelEndsLoop(t *testing.T) {
	f := newFixture(rising(60))
	p := f.poller(WithCycleDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())

	if err := p.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()

	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("loop ignored context cancellation")
	}
	if p.Running() {
		t.Fatalf("session should be stopped once its context is gone")
	}
}

func TestPollerSetEndpoint(t *testing.T) {
	f := newFixture(rising(60))
	f.market.latErr = errors.New("503")
	p := f.poller()

	if _, err := p.SetEndpoint(context.Background(), "Nope"); !errors.Is(err, ErrUnknownEndpoint) {
		t.Fatalf("expected ErrUnknownEndpoint, got %v", err)
	}
	ep, err := p.SetEndpoint(context.Background(), "Testnet")
	if err != nil {
		t.Fatalf("set endpoint: %v", err)
	}
	p.Wait()

	if ep.URL != "http://testnet" || f.market.Endpoint() != "http://testnet" {
		t.Fatalf("client endpoint not switched: %s", f.market.Endpoint())
	}
	if st := p.Stats(); st.EndpointName != "Testnet" || st.LatencyQuality != models.LatencyError {
		t.Fatalf("unexpected stats %+v", st)
	}
	if len(f.events.logs(models.LogError)) != 1 {
		t.Fatalf("failed probe should log an error")
	}

	next, err := p.NextEndpoint(context.Background())
	p.Wait()
	if err != nil || next.Name != "Main" {
		t.Fatalf("next endpoint should wrap to Main, got %v %v", next, err)
	}
}

func TestPollerSetSymbol(t *testing.T) {
	f := newFixture(rising(60))
	p := f.poller()

	if _, err := p.SetSymbol("bt c!"); !errors.Is(err, ErrInvalidSymbol) {
		t.Fatalf("expected ErrInvalidSymbol, got %v", err)
	}
	sym, err := p.SetSymbol(" pepeusdt ")
	if err != nil || sym != "PEPEUSDT" {
		t.Fatalf("set symbol: %q %v", sym, err)
	}
	if p.Session().Symbol != "PEPEUSDT" {
		t.Fatalf("session symbol not updated")
	}
	syms := p.Symbols()
	if syms[len(syms)-1] != "PEPEUSDT" {
		t.Fatalf("custom symbol not added: %v", syms)
	}
}

func TestPollerSettingsToggles(t *testing.T) {
	f := newFixture(rising(60))
	p := f.poller()

	agg := 0.3
	chart := "line"
	s := p.UpdateSettings(&models.UpdateSettingsRequest{Aggressiveness: &agg, ChartType: &chart})
	if s.Aggressiveness != 0.3 || s.ChartType != models.ChartLine || s.CommissionPct != 0.1 {
		t.Fatalf("unexpected settings %+v", s)
	}
	if p.ToggleChartType().ChartType != models.ChartCandles {
		t.Fatalf("chart type should toggle back to candles")
	}
	if p.TogglePredictions().ShowPredictions {
		t.Fatalf("predictions should toggle off")
	}
}

func TestPollerRestartWaitsForPreviousLoop(t *testing.T) {
	f := newFixture(rising(60))
	f.market.delay = 300 * time.Millisecond
	p := f.poller(WithCycleDelay(time.Hour))

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := p.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	waitFor(t, 3*time.Second, func() bool { return f.market.fetchCount() >= 2 })

	if peak := f.market.peakFetches(); peak != 1 {
		t.Fatalf("loops overlapped: %d concurrent fetches", peak)
	}
	if !p.Running() {
		t.Fatalf("restarted session should be running")
	}
	_ = p.Stop()
	p.Wait()
}

func TestPollerShutdownRefusesNewWork(t *testing.T) {
	f := newFixture(rising(60))
	p := f.poller(WithCycleDelay(time.Hour))

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if err := p.Start(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	before := f.market.probeCount()
	if _, err := p.SetEndpoint(context.Background(), "Testnet"); err != nil {
		t.Fatalf("set endpoint: %v", err)
	}
	p.Wait()
	if got := f.market.probeCount(); got != before {
		t.Fatalf("probe ran after shutdown: %d -> %d", before, got)
	}
}
