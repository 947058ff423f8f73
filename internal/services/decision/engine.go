package decision

import (
	"math"

	"ScalpSignal/internal/domain/models"
	"ScalpSignal/internal/services/features"
)

// Component weights of the total score.
const (
	WeightTrend      = 0.25
	WeightMomentum   = 0.25
	WeightVolatility = 0.15
	WeightVolume     = 0.15
	WeightPrediction = 0.20

	MaxConfidence  = 0.95
	HoldConfidence = 0.5
)

// Engine turns indicators and optional predictions into a signal.
type Engine struct{}

func New() *Engine { return &Engine{} }

// Decide scores the inputs. A nil bundle yields HOLD at 0.5.
func (e *Engine) Decide(ind *models.Indicators, future []float64, params models.DecisionParams) models.Decision {
	if ind == nil {
		return models.Decision{Signal: models.SignalHold, Confidence: HoldConfidence}
	}

	s := models.ScoreBreakdown{
		Trend:      TrendScore(ind),
		Momentum:   MomentumScore(ind.RSI),
		Volatility: VolatilityScore(ind.BollingerPosition),
	}
	s.Volume = VolumeScore(ind.VolumeRatio, s.Trend)
	if len(future) > 0 {
		s.Prediction = PredictionScore(features.ChangePct(ind.CurrentPrice, future[len(future)-1]))
	}

	total := float64(s.Trend)*WeightTrend +
		float64(s.Momentum)*WeightMomentum +
		float64(s.Volatility)*WeightVolatility +
		float64(s.Volume)*WeightVolume +
		float64(s.Prediction)*WeightPrediction
	total *= params.Aggressiveness

	s.Total = total
	s.Threshold = params.CommissionPct/100 + params.MinProfitPct/100

	// Confidence has a ceiling but no floor; the threshold is validated non-negative.
	switch {
	case total > s.Threshold:
		return models.Decision{Signal: models.SignalBuy, Confidence: math.Min(MaxConfidence, 0.5+total), Scores: s}
	case total < -s.Threshold:
		return models.Decision{Signal: models.SignalSell, Confidence: math.Min(MaxConfidence, 0.5-total), Scores: s}
	default:
		return models.Decision{Signal: models.SignalHold, Confidence: HoldConfidence, Scores: s}
	}
}

// TrendScore is +1 for fast SMA above slow SMA and +1 for positive MACD.
func TrendScore(ind *models.Indicators) int {
	score := 0
	if ind.SMAFast > ind.SMASlow {
		score++
	}
	if ind.MACD > 0 {
		score++
	}
	return score
}

// MomentumScore maps RSI to a score; the first matching band wins.
func MomentumScore(rsi float64) int {
	switch {
	case rsi >= 30 && rsi <= 45:
		return 2
	case rsi < 30:
		return 1
	case rsi > 70:
		return -2
	case rsi > 55:
		return -1
	default:
		return 0
	}
}

func VolatilityScore(bbPosition float64) int {
	switch {
	case bbPosition < 0.2:
		return 1
	case bbPosition > 0.8:
		return -1
	default:
		return 0
	}
}

// VolumeScore confirms or contradicts the trend on high volume only.
func VolumeScore(ratio float64, trend int) int {
	if ratio <= 1.5 {
		return 0
	}
	if trend > 0 {
		return 1
	}
	return -1
}

func PredictionScore(changePct float64) int {
	switch {
	case changePct > 1.0:
		return 2
	case changePct > 0.5:
		return 1
	case changePct < -1.0:
		return -2
	case changePct < -0.5:
		return -1
	default:
		return 0
	}
}
