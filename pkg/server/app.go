package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ScalpSignal/internal/domain/repository"
	mid "ScalpSignal/internal/middleware"
	"ScalpSignal/internal/presentation/tui"
	"ScalpSignal/internal/presentation/ws"
	"ScalpSignal/internal/usecase"
	"ScalpSignal/pkg/cache"
	"ScalpSignal/pkg/config"
	xhttp "ScalpSignal/pkg/http"
	applogger "ScalpSignal/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	poller      *usecase.Poller
	dispatcher  *mid.EventDispatcher
	hub         *ws.Hub
	tui         *tui.Presenter
	publisher   repository.SignalPublisher
	cache       cache.Service
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	poller *usecase.Poller,
	dispatcher *mid.EventDispatcher,
	hub *ws.Hub,
	tuiPresenter *tui.Presenter,
	publisher repository.SignalPublisher,
	cacheSvc cache.Service,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		log:         log,
		poller:      poller,
		dispatcher:  dispatcher,
		hub:         hub,
		tui:         tuiPresenter,
		publisher:   publisher,
		cache:       cacheSvc,
		httpHandler: handler,
	}
}

func (a *App) interactive() bool {
	return a.cfg.UI.Mode == "tui" && a.tui != nil
}

// Run starts the application and blocks until interrupted or, in TUI
// mode, until the user quits.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.dispatcher.Start(ctx)

	if a.cfg.Server.Enabled && a.httpHandler != nil {
		metricsPath := ""
		if a.cfg.Metrics.Enabled {
			metricsPath = a.cfg.Metrics.Path
		}
		a.httpServer = xhttp.NewServer(a.httpHandler,
			xhttp.WithPort(a.cfg.Server.Port),
			xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
			xhttp.WithLogger(a.log),
			xhttp.WithMetricsPath(metricsPath),
		)
		if err := a.httpServer.Start(); err != nil {
			a.log.Error("http server start error", applogger.Error(err))
			a.dispatcher.Stop()
			return err
		}
		a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))
	}

	// Headless mode has no keyboard, so it starts polling right away.
	if a.cfg.Poller.AutoStart || !a.interactive() {
		if err := a.poller.Start(ctx); err != nil && !errors.Is(err, usecase.ErrAlreadyRunning) {
			a.log.Error("poller start error", applogger.Error(err))
		}
	}

	var runErr error
	if a.interactive() {
		runErr = a.tui.Run(ctx, a.poller)
		if runErr != nil {
			a.log.Error("tui error", applogger.Error(runErr))
		}
	} else {
		a.log.Info("running headless",
			applogger.String("symbol", a.poller.Session().Symbol),
			applogger.String("endpoint", a.poller.Session().Endpoint.Name),
			applogger.Strings("symbols", a.poller.Symbols()),
		)
		<-ctx.Done()
		a.log.Info("shutdown signal received")
	}

	if err := a.shutdown(); err != nil {
		return err
	}
	return runErr
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error

	if err := a.poller.Shutdown(ctx); err != nil {
		a.log.Warn("poller stop error", applogger.Error(err))
		errs = append(errs, err)
	}

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	// Presenters go last so the final stop log still reaches them.
	a.dispatcher.Stop()
	a.hub.Close()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("signal publisher close error", applogger.Error(err))
		}
	}
	if c, ok := a.cache.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
