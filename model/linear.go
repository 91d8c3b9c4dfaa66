package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

func init() {
	if err := Register("linear", fitLinear); err != nil {
		panic(err)
	}
}

// Linear is a least-squares linear model with an optional bias term and L2
// ridge. Fitting is cold: every fit solves the weighted normal equations over
// the batch alone and ignores any incumbent.
type Linear struct {
	weights []float64
	bias    float64
	hasBias bool
}

var _ Estimator = (*Linear)(nil)

// fitLinear solves (XᵀWX + λI)β = XᵀWy. The bias column is never
// regularized.
func fitLinear(batch []Example, p Params, _ Estimator) (Estimator, error) {
	dim, err := batchDim(batch)
	if err != nil {
		return nil, err
	}

	cols := dim
	if p.WithBias {
		cols++
	}
	if len(batch) < cols {
		return nil, fmt.Errorf("%w: linear fit needs at least %d examples, got %d",
			ErrInsufficientData, cols, len(batch))
	}

	xtx := mat.NewDense(cols, cols, nil)
	xty := mat.NewVecDense(cols, nil)
	row := make([]float64, cols)
	for _, ex := range batch {
		copy(row, ex.Features)
		if p.WithBias {
			row[dim] = 1
		}
		w := ex.Weight
		if w <= 0 {
			w = 1
		}
		for i := 0; i < cols; i++ {
			xty.SetVec(i, xty.AtVec(i)+w*row[i]*ex.Label)
			for j := 0; j < cols; j++ {
				xtx.Set(i, j, xtx.At(i, j)+w*row[i]*row[j])
			}
		}
	}
	if p.Regularization > 0 {
		for i := 0; i < dim; i++ {
			xtx.Set(i, i, xtx.At(i, i)+p.Regularization)
		}
	}

	var beta mat.VecDense
	if err := beta.SolveVec(xtx, xty); err != nil {
		return nil, fmt.Errorf("%w: singular normal equations: %v", ErrNumericalFailure, err)
	}

	out := &Linear{weights: make([]float64, dim), hasBias: p.WithBias}
	for i := 0; i < dim; i++ {
		out.weights[i] = beta.AtVec(i)
	}
	if p.WithBias {
		out.bias = beta.AtVec(dim)
	}
	if !coefficientsFinite(out.weights, out.bias) {
		return nil, fmt.Errorf("%w: non-finite coefficients", ErrNumericalFailure)
	}
	return out, nil
}

// Predict returns the linear combination of features and learned weights.
func (l *Linear) Predict(features []float64) (float64, error) {
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
func (l *Linear) Dim() int { return len(l.weights) }

// Clone returns an independent copy of the model.
func (l *Linear) Clone() Estimator {
	out := *l
	out.weights = append([]float64(nil), l.weights...)
	return &out
}

// Describe returns a one-line summary of the fitted state.
func (l *Linear) Describe() string {
	return fmt.Sprintf("linear dim=%d bias=%.6g", len(l.weights), l.bias)
}

func coefficientsFinite(weights []float64, bias float64) bool {
	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return false
		}
	}
	return !math.IsNaN(bias) && !math.IsInf(bias, 0)
}
