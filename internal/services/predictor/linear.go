package predictor

import (
	"fmt"
	"sync"

	"ScalpSignal/internal/domain/service"

	"gonum.org/v1/gonum/mat"
)

const (
	DefaultLookback = 10
	DefaultHorizon  = 5

	minTrainCloses = 30
	minExamples    = 5

	// singular values below rcond*max are treated as zero
	rcond = 1e-10
)

// Option configures LinearPredictor.
type Option func(*LinearPredictor)

// WithHorizon sets the number of future closes produced per prediction.
func WithHorizon(n int) Option {
	return func(p *LinearPredictor) {
		if n > 0 {
			p.horizon = n
		}
	}
}

// WithLookback sets the input window length.
func WithLookback(n int) Option {
	return func(p *LinearPredictor) {
		if n > 0 {
			p.lookback = n
		}
	}
}

// LinearPredictor fits a joint least-squares map from the last lookback
// closes to the next horizon closes. No feature scaling is applied, inputs
// and outputs are raw prices.
type LinearPredictor struct {
	lookback int
	horizon  int

	mu        sync.RWMutex
	trained   bool
	coef      *mat.Dense // lookback x horizon
	intercept []float64  // horizon
}

// New creates an untrained predictor.
func New(opts ...Option) *LinearPredictor {
	p := &LinearPredictor{lookback: DefaultLookback, horizon: DefaultHorizon}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *LinearPredictor) Horizon() int { return p.horizon }

func (p *LinearPredictor) IsTrained() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.trained
}

// Train builds sliding-window examples from closes and fits the model.
// It returns service.ErrInsufficientData and leaves the model untouched when
// there are fewer than 30 closes or fewer than 5 examples.
func (p *LinearPredictor) Train(closes []float64) error {
	if len(closes) < minTrainCloses {
		return fmt.Errorf("train on %d closes: %w", len(closes), service.ErrInsufficientData)
	}

	var xs, ys [][]float64
	for i := p.lookback; i < len(closes)-p.horizon; i++ {
		xs = append(xs, closes[i-p.lookback:i])
		ys = append(ys, closes[i:i+p.horizon])
	}
	if len(xs) < minExamples {
		return fmt.Errorf("train on %d examples: %w", len(xs), service.ErrInsufficientData)
	}

	coef, intercept, err := fitOLS(xs, ys)
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}

	p.mu.Lock()
	p.coef = coef
	p.intercept = intercept
	p.trained = true
	p.mu.Unlock()
	return nil
}

// Predict returns horizon future closes from the tail of recent, or nil when
// the model is untrained or recent is shorter than the lookback.
func (p *LinearPredictor) Predict(recent []float64) []float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.trained || len(recent) < p.lookback {
		return nil
	}
	input := mat.NewVecDense(p.lookback, append([]float64(nil), recent[len(recent)-p.lookback:]...))

	var out mat.VecDense
	out.MulVec(p.coef.T(), input)

	pred := make([]float64, p.horizon)
	for k := range pred {
		pred[k] = out.AtVec(k) + p.intercept[k]
	}
	return pred
}

// fitOLS solves min ||Xc*B - Yc|| on column-centred data with the SVD
// minimum-norm solution, then recovers the intercept from the means.
// Price windows are highly collinear, so the design matrix is often rank deficient.
func fitOLS(xs, ys [][]float64) (*mat.Dense, []float64, error) {
	m, n, k := len(xs), len(xs[0]), len(ys[0])

	X := mat.NewDense(m, n, nil)
	Y := mat.NewDense(m, k, nil)
	for i := 0; i < m; i++ {
		X.SetRow(i, xs[i])
		Y.SetRow(i, ys[i])
	}
	xMean := centerColumns(X)
	yMean := centerColumns(Y)

	var svd mat.SVD
	if ok := svd.Factorize(X, mat.SVDThin); !ok {
		return nil, nil, fmt.Errorf("svd factorization failed")
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		// constant inputs: the best fit is the target mean
		return mat.NewDense(n, k, nil), yMean, nil
	}

	var coef mat.Dense
	svd.SolveTo(&coef, Y, rank)

	intercept := make([]float64, k)
	for j := 0; j < k; j++ {
		v := yMean[j]
		for i := 0; i < n; i++ {
			v -= xMean[i] * coef.At(i, j)
		}
		intercept[j] = v
	}
	return &coef, intercept, nil
}

func centerColumns(a *mat.Dense) []float64 {
	r, c := a.Dims()
	means := make([]float64, c)
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, a)
		s := 0.0
		for _, v := range col {
			s += v
		}
		means[j] = s / float64(r)
		for i := 0; i < r; i++ {
			a.Set(i, j, a.At(i, j)-means[j])
		}
	}
	return means
}
