// internal/device/classify.go
package device

import "errors"

// Action is the recovery decision for a failed device read.
type Action int

const (
	// ActionReconnect: the transport dropped, re-establish the
	// connection with backoff. The current cycle's read stays failed.
	ActionReconnect Action = iota

	// ActionSkipCycle: transient data-level failure, omit the device
	// from this snapshot and leave the connection alone.
	ActionSkipCycle

	// ActionDropField: one named register was undecodable, keep the
	// device's remaining fields.
	ActionDropField
)

func (a Action) String() string {
	switch a {
	case ActionReconnect:
		return "reconnect"
	case ActionSkipCycle:
		return "skip-cycle"
	case ActionDropField:
		return "drop-field"
	default:
		return "unknown"
	}
}

// Classify maps a device read/connect failure to its recovery action.
// Pure function of the error value: calling it twice on the same error
// yields the same action.
func Classify(err error) Action {
	var nr *NotReachableError
	if errors.As(err, &nr) {
		return ActionReconnect
	}
	var nc *NotConnectedError
	if errors.As(err, &nc) {
		return ActionReconnect
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return ActionDropField
	}
	// RequestError and anything unmapped: the transport is not known
	// to be dead, so do not churn the connection.
	return ActionSkipCycle
}
