// internal/bus/bus.go
package bus

import (
	"context"
	"sync"

	"github.com/tamzrod/telemetry-bridge/internal/register"
)

// Snapshot is the complete set of per-device field maps collected in
// one polling cycle. It is immutable once published; consumers that
// keep it across rounds must copy.
type Snapshot map[string]map[string]register.Value

// Bus is a single-slot, latest-value-wins broadcast from the polling
// engine to its consumers. Publish never blocks and overwrites any
// unread value; receivers observe the newest snapshot, not every one.
type Bus struct {
	mu      sync.Mutex
	seq     uint64
	val     Snapshot
	changed chan struct{}
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{changed: make(chan struct{})}
}

// Publish replaces the pending snapshot and wakes all waiters.
func (b *Bus) Publish(s Snapshot) {
	b.mu.Lock()
	b.seq++
	b.val = s
	close(b.changed)
	b.changed = make(chan struct{})
	b.mu.Unlock()
}

// Subscribe returns a receiver that has observed nothing yet.
func (b *Bus) Subscribe() *Receiver {
	return &Receiver{bus: b}
}

// Receiver tracks one consumer's position on the bus.
type Receiver struct {
	bus  *Bus
	seen uint64
}

// Next blocks until a snapshot newer than the last one returned is
// available, then returns it. Intermediate snapshots are coalesced
// away if the consumer is slower than the producer.
func (r *Receiver) Next(ctx context.Context) (Snapshot, error) {
	for {
		r.bus.mu.Lock()
		if r.bus.seq > r.seen {
			r.seen = r.bus.seq
			v := r.bus.val
			r.bus.mu.Unlock()
			return v, nil
		}
		ch := r.bus.changed
		r.bus.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ch:
		}
	}
}

// Changed returns a channel that is closed once a snapshot newer than
// the last one returned by Next is available. If one already is, the
// returned channel is already closed.
func (r *Receiver) Changed() <-chan struct{} {
	r.bus.mu.Lock()
	defer r.bus.mu.Unlock()
	if r.bus.seq > r.seen {
		return closedChan
	}
	return r.bus.changed
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()
