package indicators

import (
	"math"

	"ScalpSignal/internal/domain/models"
	"ScalpSignal/internal/services/features"
)

const (
	// MinCandles is the warm-up length below which Compute returns nil.
	MinCandles = 50

	fastPeriod      = 20
	slowPeriod      = 50
	rsiWindow       = 15
	rsiMinCloses    = 16
	macdFastPeriod  = 12
	macdSlowPeriod  = 26
	bollingerPeriod = 20
	bollingerWidth  = 2.0
	volumePeriod    = 20
	rsiFloor        = 0.001

	// flatTolerance bounds the rounding noise StdDev shows on a constant window.
	flatTolerance = 1e-12
)

// Engine computes the indicator bundle from a candle series.
type Engine struct{}

func New() *Engine { return &Engine{} }

// Compute returns nil when the series is shorter than MinCandles.
func (e *Engine) Compute(series models.CandleSeries) *models.Indicators {
	if len(series) < MinCandles {
		return nil
	}
	closes := series.Closes()
	last, _ := series.Last()

	return &models.Indicators{
		SMAFast:           features.Mean(features.Tail(closes, fastPeriod)),
		SMASlow:           features.Mean(features.Tail(closes, slowPeriod)),
		RSI:               RSI(closes),
		MACD:              MACD(closes),
		BollingerPosition: BollingerPosition(closes),
		VolumeRatio:       VolumeRatio(series.Volumes()),
		CurrentPrice:      last.Close,
		Timestamp:         last.Timestamp,
	}
}

// RSI over the last 15 closes using simple averages of gains and losses.
// Returns 50 when fewer than 16 closes are available.
func RSI(closes []float64) float64 {
	if len(closes) < rsiMinCloses {
		return 50
	}
	gains, losses := features.GainsLosses(features.Diff(features.Tail(closes, rsiWindow)))

	avgGain := rsiFloor
	if sum(gains) > 0 {
		avgGain = features.Mean(gains)
	}
	avgLoss := rsiFloor
	if sum(losses) > 0 {
		avgLoss = features.Mean(losses)
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD is approximated as mean(last 12) - mean(last 26).
// Each leg falls back to the last close when the series is too short.
func MACD(closes []float64) float64 {
	if len(closes) == 0 {
		return 0
	}
	lastClose := closes[len(closes)-1]
	fast, slow := lastClose, lastClose
	if len(closes) >= macdFastPeriod {
		fast = features.Mean(features.Tail(closes, macdFastPeriod))
	}
	if len(closes) >= macdSlowPeriod {
		slow = features.Mean(features.Tail(closes, macdSlowPeriod))
	}
	return fast - slow
}

// BollingerPosition places the last close inside mean±2σ of the last 20 closes.
// 0 is the lower band and 1 the upper band; the value is not clamped.
func BollingerPosition(closes []float64) float64 {
	if len(closes) < bollingerPeriod {
		return 0.5
	}
	window := features.Tail(closes, bollingerPeriod)
	mean := features.Mean(window)
	sd := features.StdDev(window)
	if flatWindow(window) || sd <= flatTolerance*math.Abs(mean) {
		return 0.5
	}
	upper := mean + bollingerWidth*sd
	lower := mean - bollingerWidth*sd
	return (closes[len(closes)-1] - lower) / (upper - lower)
}

// VolumeRatio is the last volume over the mean of the last 20 volumes.
func VolumeRatio(volumes []float64) float64 {
	if len(volumes) < volumePeriod {
		return 1
	}
	avg := features.Mean(features.Tail(volumes, volumePeriod))
	if avg == 0 {
		return 1
	}
	return volumes[len(volumes)-1] / avg
}

func flatWindow(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

func sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}
