// internal/device/errors.go
package device

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// Device I/O error taxonomy. Every protocol adapter maps its own
// failures onto these types; the classifier acts on nothing else.

// NotReachableError means the transport dropped mid-conversation
// (reset, broken pipe, EOF).
type NotReachableError struct {
	Cause error
}

func (e *NotReachableError) Error() string {
	return fmt.Sprintf("device not reachable (%v)", e.Cause)
}

func (e *NotReachableError) Unwrap() error { return e.Cause }

// NotConnectedError means the adapter has no usable transport at all.
type NotConnectedError struct {
	Cause error
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("device not connected (%v)", e.Cause)
}

func (e *NotConnectedError) Unwrap() error { return e.Cause }

// RequestError means the device answered but the exchange itself
// failed: protocol exception, malformed frame, short payload.
// The transport is assumed alive.
type RequestError struct {
	Cause error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed (%v)", e.Cause)
}

func (e *RequestError) Unwrap() error { return e.Cause }

// FieldError means a single named register could not be decoded into
// any known shape. The rest of the read is still usable.
type FieldError struct {
	Field string
	Cause error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q undecodable (%v)", e.Field, e.Cause)
}

func (e *FieldError) Unwrap() error { return e.Cause }

// TransportDropped reports whether err looks like a dead transport.
// Adapters use it to pick between NotReachableError and RequestError
// for errors surfacing from their underlying protocol libraries.
func TransportDropped(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNABORTED) {
		return true
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
