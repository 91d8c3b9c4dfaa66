package continuum

import (
	"sync/atomic"
	"time"

	"github.com/bahbah94/continuum/model"
)

// Snapshot is one published (estimator, version, fit stats) triple. Snapshots
// are immutable once stored: a reader that loaded one may keep using it for
// the duration of a call regardless of concurrent swaps, and the garbage
// collector reclaims superseded snapshots once the last holder drops them.
type Snapshot struct {
	Estimator model.Estimator
	Version   uint64
	Fit       FitStats
}

// FitStats describes the training run that produced a snapshot.
type FitStats struct {
	TrainedAt time.Time
	BatchSize int
	MSE       float64
	MAE       float64
}

// cell publishes snapshots to concurrent readers. Load is a single atomic
// pointer read and never blocks; Store may only be called by the holder of
// the entry's training claim, so there is exactly one writer at a time.
type cell struct {
	p atomic.Pointer[Snapshot]
}

// newCell starts at version 0: registered but never successfully fitted.
func newCell() *cell {
	c := &cell{}
	c.p.Store(&Snapshot{})
	return c
}

func (c *cell) Load() *Snapshot { return c.p.Load() }

func (c *cell) Store(s *Snapshot) { c.p.Store(s) }
