package continuum

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bahbah94/continuum/model"
)

// ModelStats are the trainer-maintained per-model counters. They are
// published through an atomic slot the same way estimator snapshots are:
// readers get a consistent copy, the claim holder is the only writer.
type ModelStats struct {
	Trains        uint64 // completed training attempts, successful or not
	Swaps         uint64
	Rejected      uint64 // candidates discarded by the validator
	Failures      uint64 // fit errors, including contained panics
	LastMSE       float64
	LastMAE       float64
	LastError     string
	LastTrainedAt time.Time
}

// modelEntry aggregates everything the runtime tracks per registered model:
// the versioned cell, the training buffer, the recipe for building fresh
// candidates, the training claim, and stats.
type modelEntry struct {
	name   string
	family string
	params model.Params

	cell   *cell
	buffer *exampleBuffer

	// training is the per-entry claim: at most one trainer task fits this
	// entry at a time, whether from the periodic tick or a train-now push.
	training atomic.Bool

	// dim is the feature length locked in by the first successful fit;
	// zero until then.
	dim atomic.Int64

	stats atomic.Pointer[ModelStats]
}

func newModelEntry(name, family string, p model.Params, cfg *LearningConfig) *modelEntry {
	e := &modelEntry{
		name:   name,
		family: family,
		params: p,
		cell:   newCell(),
		buffer: newExampleBuffer(cfg.BufferCapacity, cfg.DropPolicy),
	}
	e.stats.Store(&ModelStats{})
	return e
}

// claim transitions the entry into training; returns false if another task
// already holds it.
func (e *modelEntry) claim() bool { return e.training.CompareAndSwap(false, true) }

func (e *modelEntry) release() { e.training.Store(false) }

// updateStats publishes a modified copy of the stats. Only the claim holder
// calls it, so load-copy-store is race-free.
func (e *modelEntry) updateStats(mutate func(*ModelStats)) {
	s := *e.stats.Load()
	mutate(&s)
	e.stats.Store(&s)
}

// info assembles the externally visible view of the entry.
func (e *modelEntry) info() *ModelInfo {
	snap := e.cell.Load()
	s := e.stats.Load()

	stats := fmt.Sprintf(
		"examples_seen=%d swaps=%d trains=%d rejected=%d failures=%d dropped=%d last_mse=%.6g last_mae=%.6g",
		e.buffer.Pushed(), s.Swaps, s.Trains, s.Rejected, s.Failures,
		e.buffer.Dropped(), s.LastMSE, s.LastMAE,
	)
	if s.LastError != "" {
		stats += " last_error=" + strconv.Quote(s.LastError)
	}

	return &ModelInfo{
		Name:       e.name,
		Version:    snap.Version,
		IsTraining: e.training.Load(),
		Stats:      stats,
	}
}
