// internal/sink/sink.go
package sink

import (
	"context"
	"fmt"

	"github.com/tamzrod/telemetry-bridge/internal/register"
)

// RemoteSink is a monitoring backend that accepts one measurement per
// source per round. One implementation per backend family.
type RemoteSink interface {
	SendMeasurement(ctx context.Context, source string, values map[string]register.Value) error
}

// ErrorKind coarsely categorizes a delivery failure.
type ErrorKind int

const (
	KindDisconnected ErrorKind = iota
	KindAuth
	KindServer
	KindQuery
	KindPush
)

func (k ErrorKind) String() string {
	switch k {
	case KindDisconnected:
		return "disconnected"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	case KindQuery:
		return "query"
	case KindPush:
		return "push"
	default:
		return "unknown"
	}
}

// SendError wraps a backend failure with its category. Deliveries are
// never retried within a round; the error is logged and the sink gets
// fresh data on the next snapshot.
type SendError struct {
	Kind  ErrorKind
	Cause error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send failed (%s): %v", e.Kind, e.Cause)
}

func (e *SendError) Unwrap() error { return e.Cause }
