package models

import "time"

// SignalType is the decision outcome.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
	SignalHold SignalType = "HOLD"
)

// EmitConfidence is the confidence a non-HOLD decision must exceed to be recorded.
const EmitConfidence = 0.6

// ScoreBreakdown holds the per-component scores before weighting.
type ScoreBreakdown struct {
	Trend      int     `json:"trend"`
	Momentum   int     `json:"momentum"`
	Volatility int     `json:"volatility"`
	Volume     int     `json:"volume"`
	Prediction int     `json:"prediction"`
	Total      float64 `json:"total"`
	Threshold  float64 `json:"threshold"`
}

// Decision is the engine output for one cycle.
type Decision struct {
	Signal     SignalType     `json:"signal"`
	Confidence float64        `json:"confidence"`
	Scores     ScoreBreakdown `json:"scores"`
}

// Emittable reports whether the decision should be appended to history.
func (d Decision) Emittable() bool {
	return d.Signal != SignalHold && d.Confidence > EmitConfidence
}

// DecisionParams are the user-tunable inputs of the decision engine.
type DecisionParams struct {
	Aggressiveness float64
	CommissionPct  float64
	MinProfitPct   float64
}

// SignalRecord is an emitted signal kept in session history.
type SignalRecord struct {
	ID                 string     `json:"id"`
	Timestamp          time.Time  `json:"timestamp"`
	Symbol             string     `json:"symbol"`
	Signal             SignalType `json:"signal"`
	Confidence         float64    `json:"confidence"`
	Price              float64    `json:"price"`
	PredictionUsed     bool       `json:"prediction_used"`
	PredictedChangePct float64    `json:"predicted_change_pct,omitempty"`
	Endpoint           string     `json:"endpoint"`
}

// Snapshot is the last cycle result for a symbol.
type Snapshot struct {
	Symbol       string      `json:"symbol"`
	Endpoint     string      `json:"endpoint"`
	Indicators   *Indicators `json:"indicators"`
	FuturePrices []float64   `json:"future_prices,omitempty"`
	Decision     Decision    `json:"decision"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
