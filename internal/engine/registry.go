// internal/engine/registry.go
package engine

import (
	"fmt"
	"sync"

	"github.com/tamzrod/telemetry-bridge/internal/device"
)

// Handle is one device slot: the protocol adapter plus the transient
// lock every call into it must hold, since register reads are not
// reentrant on one adapter. Created once from configuration and never
// replaced; a failed reconnect leaves it in place, degraded.
type Handle struct {
	name string

	mu        sync.Mutex
	dev       device.Device
	connected bool
}

// Name returns the device's logical name.
func (h *Handle) Name() string { return h.name }

// Connected reports the last known connection state.
func (h *Handle) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

// Registry maps device names to handles. It is populated once at
// startup and read-only afterwards, so lookups need no lock; each
// handle carries its own.
type Registry struct {
	handles map[string]*Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*Handle)}
}

// Add registers a device under its logical name. A name is never
// associated with two handles.
func (r *Registry) Add(name string, dev device.Device) error {
	if name == "" {
		return fmt.Errorf("registry: device name required")
	}
	if _, exists := r.handles[name]; exists {
		return fmt.Errorf("registry: duplicate device name %q", name)
	}
	r.handles[name] = &Handle{name: name, dev: dev}
	return nil
}

// Handles returns every registered handle, in no particular order.
func (r *Registry) Handles() []*Handle {
	out := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		out = append(out, h)
	}
	return out
}

// Len returns the number of registered devices.
func (r *Registry) Len() int { return len(r.handles) }
