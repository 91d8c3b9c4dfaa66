package continuum

import "errors"

// Lifecycle errors returned by the runtime facade. Estimator and math errors
// (dimension mismatch, insufficient data, numerical failure, unknown family)
// live in the model package; both sets are matched with errors.Is.
var (
	// ErrNotFound is returned when no model is registered under a name.
	ErrNotFound = errors.New("model not found")

	// ErrAlreadyExists is returned on duplicate registration.
	ErrAlreadyExists = errors.New("model already registered")

	// ErrNotTrained is returned when predicting on a model that has never
	// completed a successful fit.
	ErrNotTrained = errors.New("model not trained")

	// ErrBusy is returned when an operation is forbidden while the model is
	// being retrained.
	ErrBusy = errors.New("model is training")

	// ErrInternal signals an invariant violation inside the runtime.
	ErrInternal = errors.New("internal invariant violation")
)
