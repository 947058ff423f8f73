package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ScalpSignal/internal/domain/models"
	domrepo "ScalpSignal/internal/domain/repository"
	domsvc "ScalpSignal/internal/domain/service"
	"ScalpSignal/pkg/logger"

	"github.com/google/uuid"
)

// CycleRequest is the session input for a single cycle.
type CycleRequest struct {
	Symbol   string
	Endpoint string
	Settings models.Settings
}

// CycleResult is everything one cycle produced. Indicators is nil while the
// series is still warming up; Record is nil unless a signal was emitted.
type CycleResult struct {
	Series     models.CandleSeries
	Indicators *models.Indicators
	Future     []float64
	Decision   models.Decision
	Record     *models.SignalRecord
	Logs       []models.LogEntry
}

// Frame converts the result into the payload presenters draw.
func (r *CycleResult) Frame(req CycleRequest) *models.Frame {
	f := &models.Frame{
		Series:          r.Series,
		Symbol:          req.Symbol,
		ChartType:       req.Settings.ChartType,
		ShowPredictions: req.Settings.ShowPredictions,
		FuturePrices:    r.Future,
		Indicators:      r.Indicators,
		Confidence:      r.Decision.Confidence,
	}
	if r.Indicators != nil {
		sig := r.Decision.Signal
		price := r.Indicators.CurrentPrice
		f.Signal = &sig
		f.ReferencePrice = &price
	}
	return f
}

func (r *CycleResult) logf(cat models.LogCategory, format string, args ...interface{}) {
	r.Logs = append(r.Logs, models.LogEntry{Time: time.Now(), Message: fmt.Sprintf(format, args...), Category: cat})
}

// SignalPipeline runs fetch, train, predict, indicators and decide for one cycle.
type SignalPipeline struct {
	market     domrepo.MarketData
	indicators domsvc.IndicatorEngine
	predictor  domsvc.Predictor
	decision   domsvc.DecisionEngine
	history    domrepo.SignalHistory
	publisher  domrepo.SignalPublisher
	snapshots  domrepo.SnapshotCache
	metrics    domrepo.Metrics
	log        *logger.Logger

	interval   domrepo.Interval
	limit      int
	minCandles int
}

type PipelineOption func(*SignalPipeline)

func WithInterval(iv domrepo.Interval) PipelineOption {
	return func(p *SignalPipeline) {
		if domrepo.IsValidInterval(iv) {
			p.interval = iv
		}
	}
}

func WithCandleLimit(n int) PipelineOption {
	return func(p *SignalPipeline) {
		if n > 0 {
			p.limit = n
		}
	}
}

// WithMinCandles sets how many candles a cycle needs before analysing.
func WithMinCandles(n int) PipelineOption {
	return func(p *SignalPipeline) {
		if n > 0 {
			p.minCandles = n
		}
	}
}

func NewSignalPipeline(
	market domrepo.MarketData,
	indicators domsvc.IndicatorEngine,
	predictor domsvc.Predictor,
	decision domsvc.DecisionEngine,
	history domrepo.SignalHistory,
	publisher domrepo.SignalPublisher,
	snapshots domrepo.SnapshotCache,
	metrics domrepo.Metrics,
	log *logger.Logger,
	opts ...PipelineOption,
) *SignalPipeline {
	p := &SignalPipeline{
		market:     market,
		indicators: indicators,
		predictor:  predictor,
		decision:   decision,
		history:    history,
		publisher:  publisher,
		snapshots:  snapshots,
		metrics:    metrics,
		log:        log,
		interval:   domrepo.DefaultInterval(),
		limit:      100,
		minCandles: 50,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ModelTrained reports whether the predictor has been fitted this session.
func (p *SignalPipeline) ModelTrained() bool { return p.predictor.IsTrained() }

// RunCycle executes one cycle. Only the fetch can fail; publishing and
// snapshot errors are logged and do not fail the cycle.
func (p *SignalPipeline) RunCycle(ctx context.Context, req CycleRequest) (*CycleResult, error) {
	start := time.Now()
	defer func() { p.metrics.RecordLatency("cycle", time.Since(start).Seconds()) }()

	series, err := p.market.FetchCandles(ctx, req.Symbol, p.interval, p.limit)
	p.metrics.RecordLatency("fetch_candles", time.Since(start).Seconds())
	if err != nil {
		p.metrics.RecordError("fetch")
		p.metrics.RecordCycle("error")
		return nil, fmt.Errorf("fetch candles %s: %w", req.Symbol, err)
	}

	res := &CycleResult{Series: series, Decision: models.Decision{Signal: models.SignalHold, Confidence: 0.5}}
	if len(series) < p.minCandles {
		p.metrics.RecordCycle("warmup")
		p.log.Debug("not enough candles yet",
			logger.String("symbol", req.Symbol), logger.Int("candles", len(series)), logger.Int("need", p.minCandles))
		res.logf(models.LogWarning, "%s: only %d candles received, need %d", req.Symbol, len(series), p.minCandles)
		return res, nil
	}

	closes := series.Closes()
	p.trainOnce(closes, res)

	if req.Settings.ShowPredictions && p.predictor.IsTrained() {
		res.Future = p.predictor.Predict(closes)
		if len(res.Future) > 0 {
			last := closes[len(closes)-1]
			change := (res.Future[len(res.Future)-1] - last) / last * 100
			direction := "rise"
			if change <= 0 {
				direction = "fall"
			}
			res.logf(models.LogPrediction, "%s: model predicts %s of %.2f%%", req.Symbol, direction, math.Abs(change))
		}
	}

	res.Indicators = p.indicators.Compute(series)
	if res.Indicators == nil {
		p.metrics.RecordCycle("warmup")
		return res, nil
	}
	p.metrics.RecordLastPrice(req.Symbol, res.Indicators.CurrentPrice)

	res.Decision = p.decision.Decide(res.Indicators, res.Future, req.Settings.DecisionParams())
	p.metrics.RecordCycle("ok")

	if res.Decision.Emittable() {
		res.Record = p.emit(ctx, req, res)
	}
	p.saveSnapshot(ctx, req, res)
	return res, nil
}

func (p *SignalPipeline) trainOnce(closes []float64, res *CycleResult) {
	if p.predictor.IsTrained() {
		return
	}
	err := p.predictor.Train(closes)
	switch {
	case err == nil:
		p.log.Info("predictor trained", logger.Int("closes", len(closes)), logger.Int("horizon", p.predictor.Horizon()))
		res.logf(models.LogPrediction, "Model trained on %d closes, forecasting %d candles ahead", len(closes), p.predictor.Horizon())
	case errors.Is(err, domsvc.ErrInsufficientData):
		p.log.Debug("predictor not trained yet", logger.Error(err))
	default:
		p.metrics.RecordError("train")
		p.log.Error("predictor training failed", logger.Error(err))
		res.logf(models.LogError, "Model training failed: %v", err)
	}
}

func (p *SignalPipeline) emit(ctx context.Context, req CycleRequest, res *CycleResult) *models.SignalRecord {
	price := res.Indicators.CurrentPrice
	rec := models.SignalRecord{
		Timestamp:      time.Now().UTC(),
		Symbol:         req.Symbol,
		Signal:         res.Decision.Signal,
		Confidence:     res.Decision.Confidence,
		Price:          price,
		PredictionUsed: res.Future != nil,
		Endpoint:       req.Endpoint,
	}
	if n := len(res.Future); n > 0 && price != 0 {
		rec.PredictedChangePct = (res.Future[n-1] - price) / price * 100
	}
	rec.ID = uuid.NewString()
	p.history.Append(rec)
	p.metrics.RecordSignal(req.Symbol, rec.Signal)

	cat := models.LogBuy
	if rec.Signal == models.SignalSell {
		cat = models.LogSell
	}
	res.logf(cat, "%s %s | confidence %.1f%% | price %.4f", rec.Signal, req.Symbol, rec.Confidence*100, rec.Price)
	p.log.Info("signal emitted",
		logger.String("symbol", rec.Symbol),
		logger.String("signal", string(rec.Signal)),
		logger.Float64("confidence", rec.Confidence),
		logger.Float64("price", rec.Price),
	)

	if err := p.publisher.Publish(ctx, &rec); err != nil {
		p.metrics.RecordError("publish")
		p.log.Warn("signal publish failed", logger.String("id", rec.ID), logger.Error(err))
	}
	return &rec
}

func (p *SignalPipeline) saveSnapshot(ctx context.Context, req CycleRequest, res *CycleResult) {
	snap := &models.Snapshot{
		Symbol:       req.Symbol,
		Endpoint:     req.Endpoint,
		Indicators:   res.Indicators,
		FuturePrices: res.Future,
		Decision:     res.Decision,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := p.snapshots.Save(ctx, snap); err != nil {
		p.metrics.RecordError("snapshot")
		p.log.Warn("snapshot save failed", logger.String("symbol", req.Symbol), logger.Error(err))
	}
}
