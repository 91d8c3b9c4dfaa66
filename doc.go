// Package continuum is an in-process model serving and training runtime with
// zero-downtime updates: while a model retrains on newly arrived examples, the
// incumbent version keeps serving predictions, and the candidate replaces it
// atomically once it passes validation.
//
// A Continuum owns a registry of named models. Each model occupies a versioned
// cell whose snapshots are immutable, so the predict path is one atomic load
// plus pure math and never contends with training. Training examples flow
// through a bounded per-model buffer that a background trainer drains on a
// configurable interval.
//
//	c := continuum.New(continuum.FrequentUpdates())
//	_ = c.RegisterModel("demand", "linear", nil)
//	_ = c.AddTrainingExample("demand", []float64{1.0}, 3.0, false)
//	c.StartContinuousLearning()
//	defer c.StopContinuousLearning()
package continuum
