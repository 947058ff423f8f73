package metrics

import (
	"testing"
	"time"

	"ScalpSignal/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRecorderRegistersOnCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordCycle("ok")
	r.RecordSignal("BTCUSDT", models.SignalBuy)
	r.RecordError("fetch")
	r.RecordLastPrice("BTCUSDT", 64000)
	r.RecordLatency("fetch_candles", 0.12)
	r.RecordEndpointLatency("Bybit Main", 35*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"scalpsignal_cycles_total",
		"scalpsignal_signals_total",
		"scalpsignal_errors_total",
		"scalpsignal_last_price",
		"scalpsignal_operation_duration_seconds",
		"scalpsignal_endpoint_latency_milliseconds",
	} {
		if !names[want] {
			t.Fatalf("metric %s not gathered", want)
		}
	}

	// a second recorder on its own registry must not panic
	_ = NewWithRegistry(prometheus.NewRegistry())
}
