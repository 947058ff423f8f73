package decision

import (
	"math"
	"testing"

	"ScalpSignal/internal/domain/models"
)

var defaultParams = models.DecisionParams{Aggressiveness: 1.0, CommissionPct: 0.1, MinProfitPct: 0.2}

// neutral scores zero on every component.
func neutral() *models.Indicators {
	return &models.Indicators{
		SMAFast:           100,
		SMASlow:           100,
		RSI:               50,
		MACD:              0,
		BollingerPosition: 0.5,
		VolumeRatio:       1,
		CurrentPrice:      100,
	}
}

func TestDecideNilIndicators(t *testing.T) {
	d := New().Decide(nil, []float64{1, 2, 3}, defaultParams)
	if d.Signal != models.SignalHold || d.Confidence != 0.5 {
		t.Fatalf("expected HOLD 0.5, got %s %v", d.Signal, d.Confidence)
	}
}

func TestDecideAllZeroScoresHolds(t *testing.T) {
	for _, p := range []models.DecisionParams{
		{Aggressiveness: 0.1, CommissionPct: 0.01, MinProfitPct: 0.05},
		{Aggressiveness: 1, CommissionPct: 1, MinProfitPct: 2},
		{Aggressiveness: 0.7, CommissionPct: 0.1, MinProfitPct: 0.2},
	} {
		d := New().Decide(neutral(), nil, p)
		if d.Signal != models.SignalHold || d.Confidence != 0.5 {
			t.Fatalf("params %+v: expected HOLD 0.5, got %s %v", p, d.Signal, d.Confidence)
		}
	}
}

func TestRisingSeriesWithPredictionBuys(t *testing.T) {
	ind := &models.Indicators{
		SMAFast:           149.5,
		SMASlow:           134.5,
		RSI:               99.9,
		MACD:              7,
		BollingerPosition: 0.912,
		VolumeRatio:       1,
		CurrentPrice:      159,
	}
	d := New().Decide(ind, []float64{160, 161, 162, 163, 164}, defaultParams)
	if d.Signal != models.SignalBuy {
		t.Fatalf("expected BUY, got %s (scores %+v)", d.Signal, d.Scores)
	}
	if math.Abs(d.Confidence-0.75) > 1e-9 {
		t.Fatalf("confidence = %v, want 0.75", d.Confidence)
	}
	if d.Scores.Trend != 2 || d.Scores.Momentum != -2 || d.Scores.Volatility != -1 || d.Scores.Prediction != 2 {
		t.Fatalf("unexpected breakdown %+v", d.Scores)
	}
}

func TestSellAndConfidenceCeiling(t *testing.T) {
	ind := &models.Indicators{
		SMAFast:           90,
		SMASlow:           100,
		RSI:               80,
		MACD:              -1,
		BollingerPosition: 0.95,
		VolumeRatio:       3,
		CurrentPrice:      100,
	}
	d := New().Decide(ind, []float64{97}, defaultParams)
	// -2*0.25 - 1*0.15 - 1*0.15 - 2*0.20 = -1.2
	if d.Signal != models.SignalSell {
		t.Fatalf("expected SELL, got %s", d.Signal)
	}
	if d.Confidence != MaxConfidence {
		t.Fatalf("confidence = %v, want ceiling %v", d.Confidence, MaxConfidence)
	}
	if math.Abs(d.Scores.Total+1.2) > 1e-9 {
		t.Fatalf("total = %v", d.Scores.Total)
	}
}

func TestAggressivenessAttenuates(t *testing.T) {
	ind := neutral()
	ind.RSI = 40 // momentum +2 => 0.5
	full := New().Decide(ind, nil, defaultParams)
	low := New().Decide(ind, nil, models.DecisionParams{Aggressiveness: 0.1, CommissionPct: 0.1, MinProfitPct: 0.2})
	if full.Signal != models.SignalBuy || math.Abs(full.Confidence-0.95) > 1e-9 {
		t.Fatalf("full aggressiveness: %s %v", full.Signal, full.Confidence)
	}
	if low.Signal != models.SignalBuy || math.Abs(low.Confidence-0.55) > 1e-9 {
		t.Fatalf("low aggressiveness: %s %v", low.Signal, low.Confidence)
	}
	if low.Emittable() {
		t.Fatalf("confidence 0.55 must not be emitted")
	}
}

func TestBelowThresholdHolds(t *testing.T) {
	ind := neutral()
	ind.BollingerPosition = 0.1 // +1 => 0.15
	d := New().Decide(ind, nil, models.DecisionParams{Aggressiveness: 0.01, CommissionPct: 0.1, MinProfitPct: 0.2})
	// 0.15*0.01 stays under the 0.003 threshold
	if d.Signal != models.SignalHold || d.Confidence != HoldConfidence {
		t.Fatalf("expected HOLD under threshold, got %s (total %v)", d.Signal, d.Scores.Total)
	}
	if math.Abs(d.Scores.Threshold-0.003) > 1e-12 {
		t.Fatalf("threshold = %v", d.Scores.Threshold)
	}
}

func TestMomentumBands(t *testing.T) {
	cases := []struct {
		rsi  float64
		want int
	}{
		{10, 1}, {30, 2}, {45, 2}, {50, 0}, {55, 0}, {56, -1}, {70, -1}, {70.1, -2},
	}
	for _, c := range cases {
		if got := MomentumScore(c.rsi); got != c.want {
			t.Fatalf("MomentumScore(%v) = %d, want %d", c.rsi, got, c.want)
		}
	}
}

func TestPredictionBands(t *testing.T) {
	cases := []struct {
		pct  float64
		want int
	}{
		{1.5, 2}, {1.0, 1}, {0.6, 1}, {0.5, 0}, {-0.5, 0}, {-0.6, -1}, {-1.0, -1}, {-1.1, -2},
	}
	for _, c := range cases {
		if got := PredictionScore(c.pct); got != c.want {
			t.Fatalf("PredictionScore(%v) = %d, want %d", c.pct, got, c.want)
		}
	}
}

func TestVolumeScore(t *testing.T) {
	if VolumeScore(1.5, 2) != 0 {
		t.Fatalf("ratio 1.5 must not score")
	}
	if VolumeScore(2, 1) != 1 {
		t.Fatalf("high volume with trend must confirm")
	}
	if VolumeScore(2, 0) != -1 {
		t.Fatalf("high volume without trend must contradict")
	}
}
