package continuum

import "time"

// LearningConfig controls the background trainer and the swap validation
// gate.
type LearningConfig struct {
	// Enabled gates continuous learning; StartContinuousLearning is a no-op
	// while false.
	Enabled bool

	// Interval is the trainer wake period.
	Interval time.Duration

	// MinSamples is the minimum number of unconsumed examples before a
	// model is eligible for retraining.
	MinSamples int

	// AutoSwap commits validated candidates. When false a model's first fit
	// is still published (there is no incumbent to compare against); after
	// that the trainer fits and measures candidates but never publishes
	// them, which makes a dry run: stats advance, versions stay at 1.
	AutoSwap bool

	// ValidationThreshold is the minimum relative MSE improvement over the
	// incumbent required to swap. In KL mode it is the minimum divergence
	// instead.
	ValidationThreshold float64

	// UseKLDivergence switches the validator from the MSE improvement gate
	// to the KL drift gate. See validate for the inverted semantics; keep
	// it off unless drift-triggered replacement is what you want.
	UseKLDivergence bool

	// BufferCapacity bounds each model's training buffer. Zero means
	// DefaultBufferCapacity.
	BufferCapacity int

	// DropPolicy selects the overflow behavior of a full buffer.
	DropPolicy DropPolicy
}

// DefaultConfig returns the standard configuration: minute-cadence training,
// auto-swap on any MSE improvement.
func DefaultConfig() *LearningConfig {
	return &LearningConfig{
		Enabled:    true,
		Interval:   60 * time.Second,
		MinSamples: 10,
		AutoSwap:   true,
	}
}

// FrequentUpdates returns a configuration tuned for fast-moving data: short
// interval, small sample gate.
func FrequentUpdates() *LearningConfig {
	cfg := DefaultConfig()
	cfg.Interval = 2 * time.Second
	cfg.MinSamples = 5
	return cfg
}

// Conservative returns a configuration that retrains rarely and swaps only on
// a clear improvement.
func Conservative() *LearningConfig {
	cfg := DefaultConfig()
	cfg.Interval = 5 * time.Minute
	cfg.MinSamples = 100
	cfg.ValidationThreshold = 0.1
	return cfg
}

// withDefaults fills unset fields so the rest of the runtime can rely on
// them.
func (c *LearningConfig) withDefaults() *LearningConfig {
	out := *c
	if out.Interval <= 0 {
		out.Interval = 60 * time.Second
	}
	if out.MinSamples <= 0 {
		out.MinSamples = 1
	}
	if out.BufferCapacity <= 0 {
		out.BufferCapacity = DefaultBufferCapacity
	}
	return &out
}
