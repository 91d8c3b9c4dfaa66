package model

import (
	"fmt"
)

func init() {
	if err := Register("linear_sgd", fitLinearSGD); err != nil {
		panic(err)
	}
}

// gradTolerance stops iterative fitting once the gradient norm falls below
// it.
const gradTolerance = 1e-6

// LinearSGD is a linear model fitted by full-batch gradient descent with L2
// regularization. Fitting warm-starts from the incumbent's coefficients when
// the dimension matches, so successive retrains refine the model instead of
// restarting it.
type LinearSGD struct {
	weights []float64
	bias    float64
	hasBias bool
}

var _ Estimator = (*LinearSGD)(nil)

func fitLinearSGD(batch []Example, p Params, prev Estimator) (Estimator, error) {
	dim, err := batchDim(batch)
	if err != nil {
		return nil, err
	}

	out := &LinearSGD{weights: make([]float64, dim), hasBias: p.WithBias}
	if warm, ok := prev.(*LinearSGD); ok && warm.Dim() == dim {
		copy(out.weights, warm.weights)
		out.bias = warm.bias
	}

	lr := p.LearningRate
	if lr <= 0 {
		lr = 0.01
	}
	iterations := p.MaxIterations
	if iterations <= 0 {
		iterations = 1000
	}

	n := float64(len(batch))
	grad := make([]float64, dim)
	for iter := 0; iter < iterations; iter++ {
		for i := range grad {
			grad[i] = 0
		}
		var gradBias float64
		for _, ex := range batch {
			w := ex.Weight
			if w <= 0 {
				w = 1
			}
			pred := out.bias
			for i, c := range out.weights {
				pred += c * ex.Features[i]
			}
			resid := 2 * w * (pred - ex.Label) / n
			for i := range grad {
				grad[i] += resid * ex.Features[i]
			}
			if out.hasBias {
				gradBias += resid
			}
		}
		if p.Regularization > 0 {
			for i := range grad {
				grad[i] += 2 * p.Regularization * out.weights[i]
			}
		}

		var normSq float64
		for i, g := range grad {
			out.weights[i] -= lr * g
			normSq += g * g
		}
		out.bias -= lr * gradBias
		normSq += gradBias * gradBias

		if normSq < gradTolerance*gradTolerance {
			break
		}
	}

	if !coefficientsFinite(out.weights, out.bias) {
		return nil, fmt.Errorf("%w: gradient descent diverged", ErrNumericalFailure)
	}
	return out, nil
}

// Predict returns the linear combination of features and learned weights.
func (l *LinearSGD) Predict(features []float64) (float64, error) {
	if len(features) != len(l.weights) {
		return 0, fmt.Errorf("%w: got %d features, model learned on %d",
			ErrDimensionMismatch, len(features), len(l.weights))
	}
	y := l.bias
	for i, w := range l.weights {
		y += w * features[i]
	}
	return y, nil
}

// Dim returns the fitted feature dimension.
func (l *LinearSGD) Dim() int { return len(l.weights) }

// Clone returns an independent copy of the model.
func (l *LinearSGD) Clone() Estimator {
	out := *l
	out.weights = append([]float64(nil), l.weights...)
	return &out
}

// Describe returns a one-line summary of the fitted state.
func (l *LinearSGD) Describe() string {
	return fmt.Sprintf("linear_sgd dim=%d bias=%.6g", len(l.weights), l.bias)
}
