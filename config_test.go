package continuum

import (
	"testing"
	"time"
)

func TestConfigPresets(t *testing.T) {
	def := DefaultConfig()
	if !def.Enabled || !def.AutoSwap {
		t.Errorf("DefaultConfig() = %+v, want enabled with auto-swap", def)
	}
	if def.UseKLDivergence {
		t.Error("DefaultConfig() enables KL mode, want MSE gate by default")
	}

	frequent := FrequentUpdates()
	if frequent.Interval >= def.Interval {
		t.Errorf("FrequentUpdates().Interval = %v, want shorter than default %v", frequent.Interval, def.Interval)
	}
	if frequent.MinSamples >= def.MinSamples {
		t.Errorf("FrequentUpdates().MinSamples = %d, want smaller than default %d", frequent.MinSamples, def.MinSamples)
	}

	conservative := Conservative()
	if conservative.MinSamples <= def.MinSamples {
		t.Errorf("Conservative().MinSamples = %d, want larger than default %d", conservative.MinSamples, def.MinSamples)
	}
	if conservative.ValidationThreshold <= 0 {
		t.Errorf("Conservative().ValidationThreshold = %v, want positive", conservative.ValidationThreshold)
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := (&LearningConfig{}).withDefaults()
	if cfg.Interval <= 0 {
		t.Errorf("Interval = %v, want positive", cfg.Interval)
	}
	if cfg.MinSamples <= 0 {
		t.Errorf("MinSamples = %d, want positive", cfg.MinSamples)
	}
	if cfg.BufferCapacity != DefaultBufferCapacity {
		t.Errorf("BufferCapacity = %d, want %d", cfg.BufferCapacity, DefaultBufferCapacity)
	}

	// The original is not modified.
	orig := &LearningConfig{Interval: time.Second}
	_ = orig.withDefaults()
	if orig.MinSamples != 0 {
		t.Error("withDefaults mutated its receiver")
	}
}
