// internal/push/coordinator.go
package push

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tamzrod/telemetry-bridge/internal/bus"
	"github.com/tamzrod/telemetry-bridge/internal/sink"
)

// DefaultMaxInFlightRounds bounds how many push rounds may run
// concurrently when sinks are persistently slower than the polling
// period. At the cap the coordinator waits for a slot instead of
// spawning further rounds, so delivery degrades to coalescing rather
// than unbounded goroutine growth.
const DefaultMaxInFlightRounds = 4

// sinkHandle pairs a sink with the lock that keeps at most one send
// in flight per sink, even when a stale round is still draining.
type sinkHandle struct {
	name string
	mu   sync.Mutex
	s    sink.RemoteSink
}

// Coordinator consumes snapshots from the bus and fans each one out
// to every configured sink concurrently.
type Coordinator struct {
	sinks       []*sinkHandle
	maxInFlight int
	log         *zap.SugaredLogger
}

// New creates a coordinator over a named sink set.
func New(sinks map[string]sink.RemoteSink, maxInFlight int, log *zap.SugaredLogger) (*Coordinator, error) {
	if log == nil {
		return nil, fmt.Errorf("push: logger required")
	}
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlightRounds
	}
	c := &Coordinator{maxInFlight: maxInFlight, log: log}
	for name, s := range sinks {
		c.sinks = append(c.sinks, &sinkHandle{name: name, s: s})
	}
	return c, nil
}

// Run loops until ctx is cancelled: wait for a snapshot, start a
// round, then race round completion against newer data. If new data
// wins, the stale round keeps running in the background; its results
// are logged but no longer gate scheduling.
func (c *Coordinator) Run(ctx context.Context, rcv *bus.Receiver) {
	slots := make(chan struct{}, c.maxInFlight)

	for {
		snap, err := rcv.Next(ctx)
		if err != nil {
			return
		}

		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			return
		}

		c.log.Infow("new data available, starting push round", "devices", len(snap))
		done := c.startRound(ctx, snap, slots)

		select {
		case <-done:
		case <-rcv.Changed():
			c.log.Warnw("push round still in flight, new data available")
		case <-ctx.Done():
			return
		}
	}
}

// startRound spawns one send task per sink and returns a channel that
// closes when every task has finished. The round releases its slot
// itself, whether or not it is still being waited on.
func (c *Coordinator) startRound(ctx context.Context, snap bus.Snapshot, slots <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() { <-slots }()

		var wg sync.WaitGroup
		for _, h := range c.sinks {
			h := h
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.sendToSink(ctx, h, snap)
			}()
		}
		wg.Wait()
	}()

	return done
}

// sendToSink delivers one snapshot to one sink, one measurement per
// device source. A failure for one source does not stop the next.
func (c *Coordinator) sendToSink(ctx context.Context, h *sinkHandle, snap bus.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.log.Debugw("sending to sink", "sink", h.name)
	for source, values := range snap {
		if ctx.Err() != nil {
			return
		}
		if err := h.s.SendMeasurement(ctx, source, values); err != nil {
			c.log.Errorw("could not send data to sink",
				"sink", h.name, "source", source, "error", err)
		}
	}
}
