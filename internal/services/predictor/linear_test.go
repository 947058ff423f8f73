package predictor

import (
	"errors"
	"math"
	"testing"

	"ScalpSignal/internal/domain/service"
)

func linearCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestTrainInsufficientCloses(t *testing.T) {
	p := New()
	err := p.Train(linearCloses(29, 100, 1))
	if !errors.Is(err, service.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if p.IsTrained() {
		t.Fatalf("model must stay untrained")
	}
	if got := p.Predict(linearCloses(20, 100, 1)); got != nil {
		t.Fatalf("untrained predict must return nil, got %v", got)
	}
}

func TestTrainInsufficientExamples(t *testing.T) {
	// 30 closes with a long window leave fewer than 5 examples
	p := New(WithLookback(22), WithHorizon(5))
	if err := p.Train(linearCloses(30, 100, 1)); !errors.Is(err, service.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if p.IsTrained() {
		t.Fatalf("model must stay untrained")
	}
}

func TestTrainAndPredictRising(t *testing.T) {
	p := New()
	if err := p.Train(linearCloses(60, 100, 1)); err != nil {
		t.Fatalf("train: %v", err)
	}
	if !p.IsTrained() {
		t.Fatalf("expected trained")
	}

	got := p.Predict(linearCloses(60, 100, 1))
	if len(got) != 5 {
		t.Fatalf("expected 5 predictions, got %d", len(got))
	}
	for k, v := range got {
		want := 160 + float64(k)
		if math.Abs(v-want) > 1e-6 {
			t.Fatalf("prediction[%d] = %v, want %v", k, v, want)
		}
	}
}

func TestPredictUsesTail(t *testing.T) {
	p := New()
	if err := p.Train(linearCloses(60, 100, 1)); err != nil {
		t.Fatalf("train: %v", err)
	}
	exact := p.Predict(linearCloses(10, 150, 1))
	longer := p.Predict(append([]float64{1, 2, 3}, linearCloses(10, 150, 1)...))
	for k := range exact {
		if math.Abs(exact[k]-longer[k]) > 1e-9 {
			t.Fatalf("tail truncation mismatch at %d: %v vs %v", k, exact[k], longer[k])
		}
	}
	if got := p.Predict(linearCloses(9, 150, 1)); got != nil {
		t.Fatalf("short input must return nil")
	}
}

func TestHorizonOption(t *testing.T) {
	p := New(WithHorizon(8))
	if err := p.Train(linearCloses(60, 10, 0.5)); err != nil {
		t.Fatalf("train: %v", err)
	}
	if got := p.Predict(linearCloses(60, 10, 0.5)); len(got) != 8 {
		t.Fatalf("expected 8 predictions, got %d", len(got))
	}
}

func TestTrainFlatSeries(t *testing.T) {
	p := New()
	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 7
	}
	if err := p.Train(flat); err != nil {
		t.Fatalf("train: %v", err)
	}
	for _, v := range p.Predict(flat) {
		if math.Abs(v-7) > 1e-9 {
			t.Fatalf("flat prediction = %v", v)
		}
	}
}
