package continuum

import (
	"sync"
	"sync/atomic"

	"github.com/bahbah94/continuum/model"
)

// DefaultBufferCapacity bounds a model's training buffer unless the
// configuration overrides it.
const DefaultBufferCapacity = 10000

// PushOutcome reports what happened to a pushed example.
type PushOutcome int

const (
	// PushAccepted means the example was buffered.
	PushAccepted PushOutcome = iota
	// PushEvictedOldest means the example was buffered and the oldest
	// buffered example was discarded to make room.
	PushEvictedOldest
	// PushRejected means the example was discarded because the buffer is
	// full under DropNewest.
	PushRejected
)

// DropPolicy selects which example is discarded when a full buffer receives a
// push.
type DropPolicy int

const (
	// DropOldest evicts the oldest buffered example. This is the default:
	// it preserves recency, which protects a drifting model from training
	// on a stale window.
	DropOldest DropPolicy = iota
	// DropNewest rejects the incoming example instead.
	DropNewest
)

// exampleBuffer is a bounded FIFO of training examples. Producers are the
// callers of AddTrainingExample; the single consumer is whoever holds the
// entry's training claim. Arrival order is preserved and stamped into
// Example.Seq.
type exampleBuffer struct {
	mu     sync.Mutex
	ring   []model.Example
	head   int
	n      int
	policy DropPolicy
	seq    uint64

	size     atomic.Int64
	accepted atomic.Uint64
	evicted  atomic.Uint64
	rejected atomic.Uint64
}

func newExampleBuffer(capacity int, policy DropPolicy) *exampleBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &exampleBuffer{ring: make([]model.Example, capacity), policy: policy}
}

// Push appends one example, applying the overflow policy when full.
func (b *exampleBuffer) Push(ex model.Example) PushOutcome {
	b.mu.Lock()
	defer b.mu.Unlock()

	outcome := PushAccepted
	if b.n == len(b.ring) {
		if b.policy == DropNewest {
			b.rejected.Add(1)
			return PushRejected
		}
		b.ring[b.head] = model.Example{}
		b.head = (b.head + 1) % len(b.ring)
		b.n--
		b.size.Add(-1)
		b.evicted.Add(1)
		outcome = PushEvictedOldest
	}

	b.seq++
	ex.Seq = b.seq
	b.ring[(b.head+b.n)%len(b.ring)] = ex
	b.n++
	b.size.Add(1)
	if outcome == PushAccepted {
		b.accepted.Add(1)
	}
	return outcome
}

// Drain removes and returns up to n oldest examples in arrival order. n < 0
// drains everything. Never blocks; may return nil.
func (b *exampleBuffer) Drain(n int) []model.Example {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n < 0 || n > b.n {
		n = b.n
	}
	if n == 0 {
		return nil
	}

	out := make([]model.Example, n)
	for i := 0; i < n; i++ {
		idx := (b.head + i) % len(b.ring)
		out[i] = b.ring[idx]
		b.ring[idx] = model.Example{}
	}
	b.head = (b.head + n) % len(b.ring)
	b.n -= n
	b.size.Add(int64(-n))
	return out
}

// Len is the current number of buffered examples, readable without the lock.
func (b *exampleBuffer) Len() int { return int(b.size.Load()) }

// Accepted counts pushes that entered the buffer without triggering the
// overflow policy. Every push lands in exactly one of Accepted or Dropped, so
// Accepted() + Dropped() equals the number of pushes.
func (b *exampleBuffer) Accepted() uint64 { return b.accepted.Load() }

// Dropped counts pushes classified as dropped by the overflow policy: those
// that evicted the oldest resident and those rejected outright.
func (b *exampleBuffer) Dropped() uint64 { return b.evicted.Load() + b.rejected.Load() }

// Rejected counts pushes that never entered the buffer.
func (b *exampleBuffer) Rejected() uint64 { return b.rejected.Load() }

// Pushed counts all pushes regardless of outcome.
func (b *exampleBuffer) Pushed() uint64 {
	return b.accepted.Load() + b.evicted.Load() + b.rejected.Load()
}
