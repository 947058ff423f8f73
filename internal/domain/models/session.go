package models

import "time"

// ChartType selects how the presenter draws the series.
type ChartType string

const (
	ChartCandles ChartType = "candles"
	ChartLine    ChartType = "line"
)

// Endpoint is a named exchange base URL.
type Endpoint struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	URL  string `json:"url" yaml:"url" validate:"required,url"`
}

// Settings are the runtime-tunable session parameters.
type Settings struct {
	Aggressiveness   float64   `json:"aggressiveness"`
	CommissionPct    float64   `json:"commission_pct"`
	MinProfitPct     float64   `json:"min_profit_pct"`
	PredictionLength int       `json:"prediction_length"`
	ShowPredictions  bool      `json:"show_predictions"`
	ChartType        ChartType `json:"chart_type"`
}

// DecisionParams extracts the decision engine inputs.
func (s Settings) DecisionParams() DecisionParams {
	return DecisionParams{
		Aggressiveness: s.Aggressiveness,
		CommissionPct:  s.CommissionPct,
		MinProfitPct:   s.MinProfitPct,
	}
}

// Latency quality bands.
const (
	LatencyIdeal  = "ideal"
	LatencyFast   = "fast"
	LatencyNormal = "normal"
	LatencySlow   = "slow"
	LatencyError  = "error"
)

// LatencyQuality classifies a round-trip time.
func LatencyQuality(d time.Duration) string {
	ms := d.Milliseconds()
	switch {
	case ms < 40:
		return LatencyIdeal
	case ms < 80:
		return LatencyFast
	case ms < 150:
		return LatencyNormal
	default:
		return LatencySlow
	}
}

// SessionView is a read-only copy of the session state.
type SessionView struct {
	Running        bool      `json:"running"`
	Symbol         string    `json:"symbol"`
	Endpoint       Endpoint  `json:"endpoint"`
	LatencyMs      int64     `json:"latency_ms"`
	LatencyQuality string    `json:"latency_quality"`
	PollCounter    int       `json:"poll_counter"`
	Cycles         int64     `json:"cycles"`
	Settings       Settings  `json:"settings"`
	StartedAt      time.Time `json:"started_at,omitempty"`
}

// Stats are the aggregate counters shown next to the chart.
type Stats struct {
	TotalSignals   int    `json:"total_signals"`
	BuyCount       int    `json:"buy_count"`
	SellCount      int    `json:"sell_count"`
	ModelTrained   bool   `json:"model_trained"`
	LatencyMs      int64  `json:"latency_ms"`
	LatencyQuality string `json:"latency_quality"`
	EndpointName   string `json:"endpoint_name"`
	Running        bool   `json:"running"`
	Cycles         int64  `json:"cycles"`
}
