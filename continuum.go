package continuum

import (
	"fmt"
	"io"
	"log"

	"github.com/bahbah94/continuum/model"
)

// PredictionResponse is the result of a single prediction.
type PredictionResponse struct {
	Prediction   float64
	ModelVersion uint64
}

// BatchPredictionResponse is the result of a batch prediction. Every value
// was produced by the same model version.
type BatchPredictionResponse struct {
	Predictions  []float64
	ModelVersion uint64
}

// ModelInfo is the externally visible description of a registered model.
type ModelInfo struct {
	Name       string
	Version    uint64
	IsTraining bool
	Stats      string
}

// Continuum is the runtime facade: it owns the model registry and the
// background trainer. Multiple independent runtimes may coexist in one
// process; there is no package-level state beyond the estimator family
// registry.
type Continuum struct {
	cfg     *LearningConfig
	reg     *registry
	trainer *trainer
	logger  *log.Logger
}

// New builds a runtime with the given learning configuration; nil selects
// DefaultConfig. The runtime is silent by default, see SetLogger.
func New(cfg *LearningConfig) *Continuum {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()

	logger := log.New(io.Discard, "continuum: ", log.LstdFlags)
	reg := newRegistry()
	return &Continuum{
		cfg:     cfg,
		reg:     reg,
		trainer: newTrainer(reg, cfg, logger),
		logger:  logger,
	}
}

// SetLogger redirects runtime logging. Call it before StartContinuousLearning.
func (c *Continuum) SetLogger(logger *log.Logger) {
	c.logger = logger
	c.trainer.logger = logger
}

// RegisterModel adds a model under a unique name. family selects the
// estimator implementation ("linear", "linear_sgd"); params may be nil for
// defaults.
func (c *Continuum) RegisterModel(name, family string, params *model.Params) error {
	if !model.Known(family) {
		return fmt.Errorf("%w: %q", model.ErrUnknownFamily, family)
	}
	p := model.DefaultParams()
	if params != nil {
		p = *params
	}
	return c.reg.add(newModelEntry(name, family, p, c.cfg))
}

// UnregisterModel removes a model. It fails with ErrBusy while the model is
// being retrained.
func (c *Continuum) UnregisterModel(name string) error {
	return c.reg.remove(name)
}

// AddTrainingExample buffers one observation for the named model with unit
// weight. When trainNow is set the call also attempts an inline retrain; the
// attempt is subject to the same eligibility gate and training claim as the
// background cycle and silently degrades to a plain push when either fails.
func (c *Continuum) AddTrainingExample(name string, features []float64, label float64, trainNow bool) error {
	return c.addExample(name, features, label, 1, trainNow)
}

// AddWeightedTrainingExample is AddTrainingExample with an explicit example
// weight. Non-positive weights are treated as 1.
func (c *Continuum) AddWeightedTrainingExample(name string, features []float64, label float64, weight float64, trainNow bool) error {
	return c.addExample(name, features, label, weight, trainNow)
}

func (c *Continuum) addExample(name string, features []float64, label, weight float64, trainNow bool) error {
	e, err := c.reg.get(name)
	if err != nil {
		return err
	}
	if dim := e.dim.Load(); dim != 0 && int(dim) != len(features) {
		return fmt.Errorf("model %q: %w: got %d features, model learned on %d",
			name, model.ErrDimensionMismatch, len(features), dim)
	}

	e.buffer.Push(model.Example{
		Features: append([]float64(nil), features...),
		Label:    label,
		Weight:   weight,
	})

	if trainNow && e.buffer.Len() >= c.cfg.MinSamples && e.claim() {
		c.trainer.trainEntry(e)
		e.release()
	}
	return nil
}

// Predict returns the current model's estimate for one feature vector. The
// call never blocks on training: it loads one immutable snapshot and runs
// pure math against it.
func (c *Continuum) Predict(name string, features []float64) (*PredictionResponse, error) {
	e, err := c.reg.get(name)
	if err != nil {
		return nil, err
	}

	snap := e.cell.Load()
	if snap.Version == 0 {
		return nil, fmt.Errorf("model %q: %w", name, ErrNotTrained)
	}

	y, err := snap.Estimator.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", name, err)
	}
	return &PredictionResponse{Prediction: y, ModelVersion: snap.Version}, nil
}

// PredictBatch evaluates every feature vector against a single snapshot, so
// the returned version is unambiguous even if a swap lands mid-call.
func (c *Continuum) PredictBatch(name string, features [][]float64) (*BatchPredictionResponse, error) {
	e, err := c.reg.get(name)
	if err != nil {
		return nil, err
	}

	snap := e.cell.Load()
	if snap.Version == 0 {
		return nil, fmt.Errorf("model %q: %w", name, ErrNotTrained)
	}

	predictions := make([]float64, len(features))
	for i, x := range features {
		y, err := snap.Estimator.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("model %q: input %d: %w", name, i, err)
		}
		predictions[i] = y
	}
	return &BatchPredictionResponse{Predictions: predictions, ModelVersion: snap.Version}, nil
}

// GetModelInfo returns the named model's current version, training state, and
// stats summary.
func (c *Continuum) GetModelInfo(name string) (*ModelInfo, error) {
	e, err := c.reg.get(name)
	if err != nil {
		return nil, err
	}
	return e.info(), nil
}

// ListModels returns info for every registered model, sorted by name.
func (c *Continuum) ListModels() []*ModelInfo {
	entries := c.reg.snapshot()
	out := make([]*ModelInfo, len(entries))
	for i, e := range entries {
		out[i] = e.info()
	}
	return out
}

// StartContinuousLearning launches the background trainer. It is idempotent
// and a no-op while the configuration has learning disabled.
func (c *Continuum) StartContinuousLearning() {
	if !c.cfg.Enabled {
		c.logger.Printf("continuous learning disabled by configuration")
		return
	}
	c.trainer.Start()
}

// StopContinuousLearning signals the trainer and waits for the in-flight
// pass to finish. Idempotent. Buffered examples stay queued for the next
// start; held snapshots remain valid.
func (c *Continuum) StopContinuousLearning() {
	c.trainer.Stop()
}

// Close stops the background trainer. The runtime remains usable for
// prediction afterwards.
func (c *Continuum) Close() {
	c.StopContinuousLearning()
}
