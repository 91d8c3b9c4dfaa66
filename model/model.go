// Package model defines the estimator contract shared by the runtime core and
// the concrete estimator families, plus the registry that maps family tags to
// their fit functions.
package model

import (
	"fmt"

	"github.com/bahbah94/continuum/metrics"
)

// Example is a single training observation.
type Example struct {
	Features []float64
	Label    float64
	Weight   float64 // non-positive weights are treated as 1
	Seq      uint64  // per-model arrival order, stamped by the training buffer
}

// Params are the immutable hyperparameters an estimator is built with.
type Params struct {
	// WithBias appends an implicit 1.0 feature.
	WithBias bool
	// LearningRate is the step size for iterative families; closed-form
	// families ignore it.
	LearningRate float64
	// MaxIterations caps iterative fitting.
	MaxIterations int
	// Regularization is the L2 strength; values <= 0 disable it.
	Regularization float64
}

// DefaultParams mirrors the defaults of the reference implementation.
func DefaultParams() Params {
	return Params{
		WithBias:      true,
		LearningRate:  0.01,
		MaxIterations: 1000,
	}
}

// Estimator is a fitted model. Implementations hold only learned parameters
// and immutable hyperparameters; fitting always produces a fresh instance, so
// a published estimator is never mutated.
type Estimator interface {
	// Predict returns the estimate for one feature vector. Fails with
	// ErrDimensionMismatch when the length differs from the fitted
	// dimension.
	Predict(features []float64) (float64, error)

	// Dim is the feature dimension the estimator was fitted on, bias
	// excluded.
	Dim() int

	// Clone returns an independent copy sharing no mutable state.
	Clone() Estimator

	// Describe returns a one-line summary of the fitted state.
	Describe() string
}

// FitFunc fits a fresh estimator on a batch. prev is the incumbent estimator
// and may be nil; families that warm-start may read it but must not mutate
// it.
type FitFunc func(batch []Example, p Params, prev Estimator) (Estimator, error)

// PredictAll returns the estimator's predictions over a batch.
func PredictAll(est Estimator, batch []Example) ([]float64, error) {
	out := make([]float64, len(batch))
	for i, ex := range batch {
		y, err := est.Predict(ex.Features)
		if err != nil {
			return nil, err
		}
		out[i] = y
	}
	return out, nil
}

// EvaluateOn computes error metrics for an estimator over a batch.
func EvaluateOn(est Estimator, batch []Example) (*metrics.Evaluation, error) {
	preds, err := PredictAll(est, batch)
	if err != nil {
		return nil, err
	}
	targets := make([]float64, len(batch))
	for i, ex := range batch {
		targets[i] = ex.Label
	}
	ev := metrics.Evaluate(preds, targets)
	if ev == nil {
		return nil, fmt.Errorf("%w: empty batch", ErrInsufficientData)
	}
	return ev, nil
}

// batchDim returns the common feature length of a batch.
func batchDim(batch []Example) (int, error) {
	if len(batch) == 0 {
		return 0, fmt.Errorf("%w: empty batch", ErrInsufficientData)
	}
	dim := len(batch[0].Features)
	if dim == 0 {
		return 0, fmt.Errorf("%w: zero-length feature vector", ErrDimensionMismatch)
	}
	for _, ex := range batch[1:] {
		if len(ex.Features) != dim {
			return 0, fmt.Errorf("%w: batch mixes %d- and %d-feature examples",
				ErrDimensionMismatch, dim, len(ex.Features))
		}
	}
	return dim, nil
}
