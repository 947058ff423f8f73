package di

import (
	"fmt"

	"ScalpSignal/internal/domain/models"
	"ScalpSignal/internal/domain/repository"
	domsvc "ScalpSignal/internal/domain/service"
	"ScalpSignal/internal/handler/api"
	mid "ScalpSignal/internal/middleware"
	"ScalpSignal/internal/presentation/console"
	"ScalpSignal/internal/presentation/tui"
	"ScalpSignal/internal/presentation/ws"
	internalrepo "ScalpSignal/internal/repository"
	"ScalpSignal/internal/service/bybit"
	"ScalpSignal/internal/services/decision"
	"ScalpSignal/internal/services/indicators"
	"ScalpSignal/internal/services/predictor"
	"ScalpSignal/internal/usecase"
	"ScalpSignal/pkg/cache"
	"ScalpSignal/pkg/config"
	xhttp "ScalpSignal/pkg/http"
	pkgkafka "ScalpSignal/pkg/kafka"
	applogger "ScalpSignal/pkg/logger"
	"ScalpSignal/pkg/metrics"
	"ScalpSignal/pkg/server"
)

// tuiLogFile receives process logs while the terminal UI owns stdout.
const tuiLogFile = "scalpsignal.log"

// ProvideLogger builds the process logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	out := cfg.Log.Output
	if cfg.UI.Mode == "tui" && (out == "" || out == "stdout" || out == "stderr") {
		out = tuiLogFile
	}
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache selects the snapshot cache backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Backend == "memory" {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	if cfg.Cache.Backend == "layered" {
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
			cache.WithLayeredLocalTTL(cfg.Cache.LocalTTL),
		), nil
	}
	return rc, nil
}

// ProvideSignalPublisher returns a Kafka-backed publisher when kafka is
// enabled and a no-op otherwise.
func ProvideSignalPublisher(cfg *config.Config) (repository.SignalPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NewNoopSignalPublisher(), nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideMarketData creates the Bybit REST client bound to the default endpoint.
func ProvideMarketData(cfg *config.Config) repository.MarketData {
	ep, _ := cfg.Endpoint(cfg.Exchange.DefaultEndpoint)
	return bybit.New(ep.URL,
		bybit.WithCategory(cfg.Exchange.Category),
		bybit.WithFetchTimeout(cfg.Exchange.FetchTimeout),
		bybit.WithPingTimeout(cfg.Exchange.PingTimeout),
	)
}

func ProvideSignalHistory(cfg *config.Config) repository.SignalHistory {
	return internalrepo.NewMemorySignalHistory(cfg.Session.HistoryLimit)
}

func ProvideSnapshotCache(c cache.Service, cfg *config.Config) repository.SnapshotCache {
	return internalrepo.NewCacheSnapshotStore(c, cfg.Cache.TTL)
}

func ProvideIndicatorEngine() domsvc.IndicatorEngine { return indicators.New() }

// ProvidePredictor fixes the forecast horizon for the session.
func ProvidePredictor(cfg *config.Config) domsvc.Predictor {
	return predictor.New(predictor.WithHorizon(cfg.Settings.PredictionLength))
}

func ProvideDecisionEngine() domsvc.DecisionEngine { return decision.New() }

// ProvideSignalPipeline assembles one analysis cycle.
func ProvideSignalPipeline(
	cfg *config.Config,
	market repository.MarketData,
	ind domsvc.IndicatorEngine,
	pred domsvc.Predictor,
	dec domsvc.DecisionEngine,
	history repository.SignalHistory,
	publisher repository.SignalPublisher,
	snapshots repository.SnapshotCache,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.SignalPipeline {
	return usecase.NewSignalPipeline(market, ind, pred, dec, history, publisher, snapshots, m, log,
		usecase.WithInterval(repository.NormalizeInterval(cfg.Exchange.Interval)),
		usecase.WithCandleLimit(cfg.Exchange.CandleLimit),
	)
}

func ProvideSessionState(cfg *config.Config) *usecase.SessionState {
	ep, _ := cfg.Endpoint(cfg.Exchange.DefaultEndpoint)
	return usecase.NewSessionState(cfg.Session.Symbol, cfg.Session.Symbols, ep, cfg.InitialSettings())
}

// ProvideDispatcher creates the event dispatcher and attaches the presenters
// for the configured UI mode. The websocket hub is always attached.
func ProvideDispatcher(
	cfg *config.Config,
	log *applogger.Logger,
	m repository.Metrics,
	hub *ws.Hub,
	tuiPresenter *tui.Presenter,
) *mid.EventDispatcher {
	d := mid.NewEventDispatcher(log, m)
	d.Register(hub)
	if cfg.UI.Mode == "tui" {
		d.Register(tuiPresenter)
	} else {
		d.Register(console.NewPresenter(log))
	}
	return d
}

func ProvideHub(log *applogger.Logger) *ws.Hub { return ws.NewHub(log) }

func ProvideTUIPresenter() *tui.Presenter { return tui.NewPresenter() }

// ProvidePoller creates the session poller with cadence from config.
func ProvidePoller(
	cfg *config.Config,
	pipeline *usecase.SignalPipeline,
	market repository.MarketData,
	history repository.SignalHistory,
	snapshots repository.SnapshotCache,
	events *mid.EventDispatcher,
	state *usecase.SessionState,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.Poller {
	return usecase.NewPoller(pipeline, market, history, snapshots, events, state,
		append([]models.Endpoint(nil), cfg.Exchange.Endpoints...), m, log,
		usecase.WithCycleDelay(cfg.Poller.CycleDelay),
		usecase.WithSleepStep(cfg.Poller.SleepStep),
		usecase.WithErrorBackoff(cfg.Poller.ErrorBackoff),
		usecase.WithLatencyEvery(cfg.Poller.LatencyEvery),
	)
}

// ProvideHTTPHandler exposes the session API and the event stream.
func ProvideHTTPHandler(log *applogger.Logger, poller *usecase.Poller, hub *ws.Hub) xhttp.Handler {
	return api.NewSessionEchoHandler(log, poller, hub)
}

// ProvideApp creates the application server with all dependencies.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	poller *usecase.Poller,
	dispatcher *mid.EventDispatcher,
	hub *ws.Hub,
	tuiPresenter *tui.Presenter,
	publisher repository.SignalPublisher,
	cacheSvc cache.Service,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, poller, dispatcher, hub, tuiPresenter, publisher, cacheSvc, handler)
}
