package continuum

import (
	"math"

	"github.com/bahbah94/continuum/metrics"
)

// Decision is the validator's verdict on a candidate estimator.
type Decision int

const (
	// Discard drops the candidate and keeps the incumbent serving.
	Discard Decision = iota
	// Commit publishes the candidate as the next version.
	Commit
)

// mseEpsilon floors the improvement denominator so a zero-error incumbent
// does not divide by zero.
const mseEpsilon = 1e-12

// validate decides whether a candidate replaces the incumbent. It is a pure
// function of the measurements; all side effects stay in the trainer.
//
// The MSE gate commits when the candidate's relative improvement meets the
// threshold. The KL gate inverts the usual meaning: it commits when the
// candidate's predictions DIVERGE from the incumbent's, which makes it a
// drift detector rather than an accuracy check — in a drift regime, distance
// from the stale model is the signal. An exact tie never commits, so equal
// models cannot churn versions.
func validate(cfg *LearningConfig, hasIncumbent bool, incumbent, candidate *metrics.Evaluation, incumbentPreds, candidatePreds []float64) Decision {
	if !hasIncumbent {
		return Commit
	}
	if !cfg.AutoSwap {
		return Discard
	}

	if cfg.UseKLDivergence {
		kl := metrics.KLDivergence(
			metrics.NormalizeMinMax(candidatePreds),
			metrics.NormalizeMinMax(incumbentPreds),
		)
		if kl > 0 && kl >= cfg.ValidationThreshold {
			return Commit
		}
		return Discard
	}

	if incumbent == nil || candidate == nil {
		return Discard
	}
	improvement := (incumbent.MSE - candidate.MSE) / math.Max(incumbent.MSE, mseEpsilon)
	if candidate.MSE < incumbent.MSE && improvement >= cfg.ValidationThreshold {
		return Commit
	}
	return Discard
}
