package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	models "ScalpSignal/internal/domain/models"
	domrepo "ScalpSignal/internal/domain/repository"
	"ScalpSignal/internal/service/metrics"
	"ScalpSignal/internal/service/ratelimit"
	"ScalpSignal/internal/usecase"
	xhttp "ScalpSignal/pkg/http"
	xlogger "ScalpSignal/pkg/logger"
	"ScalpSignal/pkg/util"

	"github.com/labstack/echo/v4"
)

// SessionEchoHandler exposes the session controls over HTTP.
type SessionEchoHandler struct {
	logger *xlogger.Logger
	poller *usecase.Poller
	stream http.Handler
	rl     *ratelimit.Limiter
}

// NewSessionEchoHandler creates the handler. stream serves /ws and may be nil.
func NewSessionEchoHandler(logger *xlogger.Logger, poller *usecase.Poller, stream http.Handler) *SessionEchoHandler {
	metrics.Register()
	return &SessionEchoHandler{logger: logger, poller: poller, stream: stream, rl: ratelimit.New()}
}

func (h *SessionEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/session/start", h.observe("session_start", h.Start))
	g.POST("/session/stop", h.observe("session_stop", h.Stop))
	g.GET("/session", h.observe("session", h.Session))
	g.PUT("/session/endpoint", h.observe("set_endpoint", h.SetEndpoint))
	g.PUT("/session/symbol", h.observe("set_symbol", h.SetSymbol))
	g.GET("/symbols", h.observe("symbols", h.Symbols))
	g.GET("/endpoints", h.observe("endpoints", h.Endpoints))
	g.PUT("/settings", h.observe("settings", h.UpdateSettings))
	g.GET("/stats", h.observe("stats", h.Stats))
	g.GET("/signals", h.observe("signals", h.Signals))
	g.GET("/snapshot", h.observe("snapshot", h.Snapshot))
	g.POST("/latency/probe", h.observe("latency_probe", h.ProbeLatency))
	if h.stream != nil {
		e.GET("/ws", echo.WrapHandler(h.stream))
	}
}

func (h *SessionEchoHandler) observe(endpoint string, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()
		err := next(c)
		if err != nil {
			metrics.APIErrors.WithLabelValues(endpoint).Inc()
		}
		return err
	}
}

// detached keeps request-scoped values but outlives the request, so work
// started by a handler is not cancelled when the response is written.
func detached(c echo.Context) context.Context {
	return context.WithoutCancel(c.Request().Context())
}

func (h *SessionEchoHandler) Start(c echo.Context) error {
	if err := h.poller.Start(detached(c)); err != nil {
		return h.fail(c, "session start", err)
	}
	return xhttp.SuccessResponse(c, h.poller.Session())
}

func (h *SessionEchoHandler) Stop(c echo.Context) error {
	if err := h.poller.Stop(); err != nil {
		return h.fail(c, "session stop", err)
	}
	return xhttp.SuccessResponse(c, h.poller.Session())
}

func (h *SessionEchoHandler) Session(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.poller.Session())
}

func (h *SessionEchoHandler) SetEndpoint(c echo.Context) error {
	req := &models.SetEndpointRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ep, err := h.poller.SetEndpoint(detached(c), req.Name)
	if err != nil {
		return h.fail(c, "set endpoint", err)
	}
	return xhttp.SuccessResponse(c, ep)
}

func (h *SessionEchoHandler) SetSymbol(c echo.Context) error {
	req := &models.SetSymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if _, err := h.poller.SetSymbol(req.Symbol); err != nil {
		return h.fail(c, "set symbol", err)
	}
	return xhttp.SuccessResponse(c, h.poller.Session())
}

func (h *SessionEchoHandler) Symbols(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"active":  h.poller.Session().Symbol,
		"symbols": h.poller.Symbols(),
	})
}

func (h *SessionEchoHandler) Endpoints(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"active":    h.poller.Session().Endpoint.Name,
		"endpoints": h.poller.Endpoints(),
	})
}

func (h *SessionEchoHandler) UpdateSettings(c echo.Context) error {
	req := &models.UpdateSettingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.poller.UpdateSettings(req))
}

func (h *SessionEchoHandler) Stats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.poller.Stats())
}

func (h *SessionEchoHandler) Signals(c echo.Context) error {
	req := &models.SignalsQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	var since time.Time
	if req.Since != "" {
		t, ok := util.ParseTime(req.Since)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid since %q, want RFC3339 or a unix epoch", req.Since))
		}
		since = t
	}
	rows := h.poller.History(since, req.Limit)
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *SessionEchoHandler) Snapshot(c echo.Context) error {
	req := &models.SnapshotQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	snap, err := h.poller.Snapshot(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, "snapshot", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=5")
	return xhttp.SuccessResponse(c, snap)
}

func (h *SessionEchoHandler) ProbeLatency(c echo.Context) error {
	ep := h.poller.Session().Endpoint
	if !h.rl.Allow("probe:"+ep.Name, 3, 0.2) {
		h.logger.Warn("latency probe rate limited", xlogger.String("endpoint", ep.Name))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("latency probe rate limited"))
	}
	d, err := h.poller.ProbeLatency(c.Request().Context())
	if err != nil {
		return h.fail(c, "latency probe", err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"endpoint":   ep.Name,
		"latency_ms": d.Milliseconds(),
		"quality":    models.LatencyQuality(d),
	})
}

// fail maps usecase errors onto the response envelope.
func (h *SessionEchoHandler) fail(c echo.Context, op string, err error) error {
	var appErr *xhttp.AppError
	switch {
	case errors.Is(err, usecase.ErrAlreadyRunning), errors.Is(err, usecase.ErrNotRunning),
		errors.Is(err, usecase.ErrClosed):
		appErr = xhttp.ConflictError(err.Error())
	case errors.Is(err, usecase.ErrUnknownEndpoint), errors.Is(err, domrepo.ErrSnapshotNotFound):
		appErr = xhttp.NotFoundError(err.Error())
	case errors.Is(err, usecase.ErrInvalidSymbol):
		appErr = xhttp.BadRequestError(err.Error())
	default:
		h.logger.Error(op+" failed", xlogger.Error(err))
		appErr = xhttp.UpstreamError(op, err)
	}
	return xhttp.AppErrorResponse(c, appErr)
}
