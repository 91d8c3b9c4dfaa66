package model

import "errors"

var (
	// ErrUnknownFamily is returned when no estimator family is registered
	// under the requested tag.
	ErrUnknownFamily = errors.New("unknown estimator family")

	// ErrDimensionMismatch is returned when a feature vector's length
	// differs from the dimension the estimator learned on.
	ErrDimensionMismatch = errors.New("feature dimension mismatch")

	// ErrInsufficientData is returned when a batch is too small to fit the
	// requested family.
	ErrInsufficientData = errors.New("insufficient training data")

	// ErrNumericalFailure is returned when the underlying math fails: a
	// singular system, divergence, or non-finite coefficients.
	ErrNumericalFailure = errors.New("numerical failure")
)
