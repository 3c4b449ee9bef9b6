// internal/engine/engine.go
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/tamzrod/telemetry-bridge/internal/bus"
	"github.com/tamzrod/telemetry-bridge/internal/device"
	"github.com/tamzrod/telemetry-bridge/internal/register"
)

// ReconnectPolicy bounds the reconnect-with-backoff path.
type ReconnectPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxRetries      uint64
	AttemptTimeout  time.Duration // per connect attempt, independent of the read timeout
}

// Config is the runtime configuration of the polling engine.
type Config struct {
	Period      time.Duration
	ReadTimeout time.Duration // 0 means unbounded
	Reconnect   ReconnectPolicy
}

// Engine drives the per-cycle collection of every registered device.
type Engine struct {
	reg *Registry
	cfg Config
	log *zap.SugaredLogger
}

// New creates an engine over an already-populated registry.
func New(reg *Registry, cfg Config, log *zap.SugaredLogger) *Engine {
	return &Engine{reg: reg, cfg: cfg, log: log}
}

// Run polls on every ticker tick and publishes one snapshot per cycle
// until ctx is cancelled. A tick that fires while a cycle is still
// running is not queued; the engine picks up at the next boundary.
func (e *Engine) Run(ctx context.Context, b *bus.Bus) {
	ticker := time.NewTicker(e.cfg.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := e.PollOnce(ctx)
			e.log.Debugw("cycle complete", "devices", len(snap))
			b.Publish(snap)
		}
	}
}

// PollOnce fetches all devices in parallel and assembles one snapshot.
// The snapshot holds exactly the devices whose read completed in time;
// publication is the caller's job and happens once, afterwards. An
// empty snapshot is a legitimate observation.
func (e *Engine) PollOnce(ctx context.Context) bus.Snapshot {
	var (
		mu   sync.Mutex
		snap = make(bus.Snapshot)
		wg   sync.WaitGroup
	)

	for _, h := range e.reg.Handles() {
		h := h
		wg.Add(1)
		go func() {
			defer wg.Done()
			fields, ok := e.readDevice(ctx, h)
			if !ok || len(fields) == 0 {
				return
			}
			mu.Lock()
			snap[h.name] = fields
			mu.Unlock()
		}()
	}

	wg.Wait()
	return snap
}

type readResult struct {
	fields map[string]register.Value
	err    error
}

// readDevice performs one bounded read and applies the classifier on
// failure. It reports whether the device contributes to the snapshot.
func (e *Engine) readDevice(ctx context.Context, h *Handle) (map[string]register.Value, bool) {
	e.log.Debugw("fetching registers", "device", h.name)

	// The read runs under the handle lock; the timeout is raced
	// against it, not enforced on the transport. A late result is
	// simply dropped.
	ch := make(chan readResult, 1)
	go func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		fields, err := h.dev.ReadRegisters(ctx)
		ch <- readResult{fields: fields, err: err}
	}()

	var res readResult
	if e.cfg.ReadTimeout > 0 {
		timer := time.NewTimer(e.cfg.ReadTimeout)
		defer timer.Stop()
		select {
		case res = <-ch:
		case <-timer.C:
			e.log.Warnw("timeout reached while fetching device, skipping this cycle", "device", h.name)
			return nil, false
		case <-ctx.Done():
			return nil, false
		}
	} else {
		select {
		case res = <-ch:
		case <-ctx.Done():
			return nil, false
		}
	}

	if res.err == nil {
		return res.fields, true
	}

	switch device.Classify(res.err) {
	case device.ActionDropField:
		e.log.Errorw("undecodable register dropped", "device", h.name, "error", res.err)
		return res.fields, true
	case device.ActionReconnect:
		e.log.Errorw("device not accessible, reconnecting", "device", h.name, "error", res.err)
		e.reconnectDevice(ctx, h)
		return nil, false
	default:
		e.log.Errorw("error reading registers, skipping this cycle", "device", h.name, "error", res.err)
		return nil, false
	}
}

// reconnectDevice re-establishes the transport under a capped
// exponential backoff. The current cycle's read stays failed either
// way; on success the device is eligible again starting next cycle.
func (e *Engine) reconnectDevice(ctx context.Context, h *Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connected = false

	rp := e.cfg.Reconnect
	op := func() error {
		attemptCtx := ctx
		if rp.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, rp.AttemptTimeout)
			defer cancel()
		}
		return h.dev.Connect(attemptCtx)
	}

	bo := backoff.NewExponentialBackOff()
	if rp.InitialInterval > 0 {
		bo.InitialInterval = rp.InitialInterval
	}
	if rp.MaxInterval > 0 {
		bo.MaxInterval = rp.MaxInterval
	}
	bo.MaxElapsedTime = 0 // bounded by the retry cap instead

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, rp.MaxRetries), ctx))
	if err != nil {
		e.log.Errorw("reconnect failed", "device", h.name, "error", err)
		return
	}

	h.connected = true
	e.log.Infow("reconnect successful", "device", h.name)
}
