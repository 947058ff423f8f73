package features

import "math"

// Tail returns the last n values of xs, or all of xs if it is shorter.
// The result shares the backing array.
func Tail(xs []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

// Mean returns the arithmetic mean, 0 for empty input.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation (divide by n).
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	sum2 := 0.0
	for _, x := range xs {
		d := x - m
		sum2 += d * d
	}
	return math.Sqrt(sum2 / float64(len(xs)))
}

// Diff returns successive differences xs[i]-xs[i-1].
// It returns nil if insufficient data.
func Diff(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, 0, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out = append(out, xs[i]-xs[i-1])
	}
	return out
}

// GainsLosses splits deltas into positive gains and absolute losses, zero elsewhere.
func GainsLosses(deltas []float64) (gains, losses []float64) {
	gains = make([]float64, len(deltas))
	losses = make([]float64, len(deltas))
	for i, d := range deltas {
		if d > 0 {
			gains[i] = d
		} else if d < 0 {
			losses[i] = -d
		}
	}
	return gains, losses
}

// ChangePct is the percentage move from base to target.
func ChangePct(base, target float64) float64 {
	if base == 0 {
		return 0
	}
	return (target - base) / base * 100
}
