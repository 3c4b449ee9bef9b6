// internal/device/device.go
package device

import (
	"context"

	"github.com/tamzrod/telemetry-bridge/internal/register"
)

// Device abstracts one field-bus or PLC endpoint.
// One implementation per protocol family; the engine depends on
// this contract only.
type Device interface {
	// Connect establishes (or re-establishes) the transport.
	Connect(ctx context.Context) error

	// ReadRegisters dumps every configured register.
	// On a per-field decode failure the adapter returns the fields it
	// could decode together with a FieldError (possibly joined); the
	// caller decides whether to keep the partial map.
	ReadRegisters(ctx context.Context) (map[string]register.Value, error)
}
