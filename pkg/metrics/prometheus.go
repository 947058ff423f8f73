package metrics

import (
	"time"

	"ScalpSignal/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cycles          *prometheus.CounterVec
	signals         *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	latency         *prometheus.HistogramVec
	endpointLatency *prometheus.GaugeVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors on reg. Tests pass a fresh registry
// so repeated construction does not panic on duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scalpsignal_cycles_total",
				Help: "Polling cycles by result",
			},
			[]string{"result"},
		),
		signals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scalpsignal_signals_total",
				Help: "Emitted signals by symbol and side",
			},
			[]string{"symbol", "signal"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scalpsignal_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scalpsignal_last_price",
				Help: "Last close seen for a symbol",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scalpsignal_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		endpointLatency: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scalpsignal_endpoint_latency_milliseconds",
				Help: "Last measured round-trip time to an exchange endpoint",
			},
			[]string{"endpoint"},
		),
	}
}

// RecordCycle counts a polling cycle outcome (ok, warmup, error).
func (r *Recorder) RecordCycle(result string) {
	r.cycles.WithLabelValues(result).Inc()
}

// RecordSignal counts an emitted signal.
func (r *Recorder) RecordSignal(symbol string, signal models.SignalType) {
	r.signals.WithLabelValues(symbol, string(signal)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordEndpointLatency stores the last probe result for an endpoint.
func (r *Recorder) RecordEndpointLatency(endpoint string, d time.Duration) {
	r.endpointLatency.WithLabelValues(endpoint).Set(float64(d.Milliseconds()))
}
