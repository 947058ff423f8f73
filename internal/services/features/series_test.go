package features

import (
	"math"
	"testing"
)

func TestTail(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	if got := Tail(xs, 2); len(got) != 2 || got[0] != 4 || got[1] != 5 {
		t.Fatalf("unexpected tail %v", got)
	}
	if got := Tail(xs, 10); len(got) != 5 {
		t.Fatalf("expected whole slice, got %v", got)
	}
	if got := Tail(xs, 0); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestMeanAndStdDev(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if m := Mean(xs); m != 5 {
		t.Fatalf("mean = %v", m)
	}
	if sd := StdDev(xs); math.Abs(sd-2) > 1e-12 {
		t.Fatalf("population stddev = %v, want 2", sd)
	}
	if Mean(nil) != 0 || StdDev(nil) != 0 {
		t.Fatalf("empty input must yield 0")
	}
}

func TestGainsLosses(t *testing.T) {
	gains, losses := GainsLosses(Diff([]float64{10, 12, 11, 11}))
	if gains[0] != 2 || gains[1] != 0 || gains[2] != 0 {
		t.Fatalf("gains %v", gains)
	}
	if losses[0] != 0 || losses[1] != 1 || losses[2] != 0 {
		t.Fatalf("losses %v", losses)
	}
}

func TestChangePct(t *testing.T) {
	if got := ChangePct(100, 101.5); math.Abs(got-1.5) > 1e-12 {
		t.Fatalf("change = %v", got)
	}
	if ChangePct(0, 10) != 0 {
		t.Fatalf("zero base must yield 0")
	}
}
