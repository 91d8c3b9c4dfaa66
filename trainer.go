package continuum

import (
	"fmt"
	"log"
	"sync"
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"github.com/bahbah94/continuum/metrics"
	"github.com/bahbah94/continuum/model"
)

// trainer is the background worker that retrains eligible models and commits
// validated candidates. One goroutine owns the loop; per-entry exclusivity is
// enforced by each entry's training claim, so the periodic tick and ad-hoc
// train-now pushes never fit the same model concurrently.
type trainer struct {
	reg    *registry
	cfg    *LearningConfig
	logger *log.Logger

	mu   sync.Mutex
	done chan struct{} // closing signals the loop to exit
	idle chan struct{} // closed by the loop once it has exited
}

func newTrainer(reg *registry, cfg *LearningConfig, logger *log.Logger) *trainer {
	return &trainer{reg: reg, cfg: cfg, logger: logger}
}

// Start launches the loop. Starting a running trainer is a no-op.
func (t *trainer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done != nil {
		return
	}
	t.done = make(chan struct{})
	t.idle = make(chan struct{})
	go t.run(t.done, t.idle)
}

// Stop signals the loop and waits until the in-flight per-entry pass
// finishes. Stopping a stopped trainer is a no-op.
func (t *trainer) Stop() {
	t.mu.Lock()
	done, idle := t.done, t.idle
	t.done, t.idle = nil, nil
	t.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	<-idle
}

func (t *trainer) run(done chan struct{}, idle chan struct{}) {
	defer close(idle)
	for range channerics.NewTicker(done, t.cfg.Interval) {
		t.tick(done)
	}
}

// tick claims and retrains every eligible entry, re-checking the stop signal
// between entries so shutdown stays prompt even with many models.
func (t *trainer) tick(done <-chan struct{}) {
	for _, e := range t.reg.snapshot() {
		select {
		case <-done:
			return
		default:
		}
		if e.buffer.Len() < t.cfg.MinSamples {
			continue
		}
		if !e.claim() {
			continue
		}
		t.trainEntry(e)
		e.release()
	}
}

// trainEntry runs one drain → fit → validate → commit cycle. The caller must
// hold the entry's training claim. Errors never propagate: they are recorded
// in the entry's stats and the incumbent keeps serving.
func (t *trainer) trainEntry(e *modelEntry) {
	batch := e.buffer.Drain(-1)
	if len(batch) == 0 {
		return
	}
	incumbent := e.cell.Load()

	start := time.Now()
	candidate, err := t.fit(e, incumbent, batch)
	if err == nil {
		var candEval *metrics.Evaluation
		candEval, err = model.EvaluateOn(candidate, batch)
		if err == nil {
			t.judge(e, incumbent, candidate, candEval, batch, start)
			return
		}
	}

	t.logger.Printf("model %q: training failed on %d examples: %v", e.name, len(batch), err)
	e.updateStats(func(s *ModelStats) {
		s.Trains++
		s.Failures++
		s.LastError = err.Error()
		s.LastTrainedAt = start
	})
}

// judge measures the incumbent on the same batch, asks the validator, and
// commits or discards the candidate.
func (t *trainer) judge(e *modelEntry, incumbent *Snapshot, candidate model.Estimator, candEval *metrics.Evaluation, batch []model.Example, start time.Time) {
	hasIncumbent := incumbent.Version > 0

	var incEval *metrics.Evaluation
	var incPreds, candPreds []float64
	if hasIncumbent {
		var err error
		if incPreds, err = model.PredictAll(incumbent.Estimator, batch); err == nil {
			incEval = incumbentEval(incPreds, batch)
		}
		if t.cfg.UseKLDivergence {
			// Candidate predictions are only needed for the drift gate.
			candPreds, _ = model.PredictAll(candidate, batch)
		}
	}

	decision := validate(t.cfg, hasIncumbent, incEval, candEval, incPreds, candPreds)
	switch decision {
	case Commit:
		next := &Snapshot{
			Estimator: candidate,
			Version:   incumbent.Version + 1,
			Fit: FitStats{
				TrainedAt: start,
				BatchSize: len(batch),
				MSE:       candEval.MSE,
				MAE:       candEval.MAE,
			},
		}
		e.cell.Store(next)
		e.dim.CompareAndSwap(0, int64(candidate.Dim()))
		e.updateStats(func(s *ModelStats) {
			s.Trains++
			s.Swaps++
			s.LastMSE = candEval.MSE
			s.LastMAE = candEval.MAE
			s.LastError = ""
			s.LastTrainedAt = start
		})
		t.logger.Printf("model %q: swapped to version %d (%s, mse=%.6g, batch=%d)",
			e.name, next.Version, candidate.Describe(), candEval.MSE, len(batch))
	default:
		e.updateStats(func(s *ModelStats) {
			s.Trains++
			s.Rejected++
			s.LastMSE = candEval.MSE
			s.LastMAE = candEval.MAE
			s.LastTrainedAt = start
		})
		t.logger.Printf("model %q: candidate rejected at version %d (candidate mse=%.6g, batch=%d)",
			e.name, incumbent.Version, candEval.MSE, len(batch))
	}
}

// fit builds the candidate, containing estimator panics so a misbehaving fit
// cannot tear down the runtime.
func (t *trainer) fit(e *modelEntry, incumbent *Snapshot, batch []model.Example) (est model.Estimator, err error) {
	defer func() {
		if r := recover(); r != nil {
			est = nil
			err = fmt.Errorf("%w: panic during fit: %v", model.ErrNumericalFailure, r)
		}
	}()

	var prev model.Estimator
	if incumbent.Estimator != nil {
		// Clone so a warm-starting family can never alias the published
		// incumbent.
		prev = incumbent.Estimator.Clone()
	}
	return model.Fit(e.family, batch, e.params, prev)
}

func incumbentEval(preds []float64, batch []model.Example) *metrics.Evaluation {
	targets := make([]float64, len(batch))
	for i, ex := range batch {
		targets[i] = ex.Label
	}
	return metrics.Evaluate(preds, targets)
}
