package service

import (
	"errors"

	"ScalpSignal/internal/domain/models"
)

// ErrInsufficientData means a stage does not have enough samples yet.
// It is an expected warm-up outcome, not a failure.
var ErrInsufficientData = errors.New("insufficient data")

// IndicatorEngine computes the indicator bundle. It returns nil during warm-up.
type IndicatorEngine interface {
	Compute(series models.CandleSeries) *models.Indicators
}

// Predictor maps a window of past closes to a window of future closes.
type Predictor interface {
	Train(closes []float64) error
	Predict(recent []float64) []float64
	IsTrained() bool
	Horizon() int
}

// DecisionEngine scores indicators and predictions into a signal.
type DecisionEngine interface {
	Decide(ind *models.Indicators, future []float64, params models.DecisionParams) models.Decision
}
