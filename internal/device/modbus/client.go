// internal/device/modbus/client.go
package modbus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/telemetry-bridge/internal/device"
	"github.com/tamzrod/telemetry-bridge/internal/register"
)

// readFn is one goburrow read primitive (input or holding registers).
type readFn func(address, quantity uint16) ([]byte, error)

// Client implements device.Device over Modbus TCP or RTU.
// Callers serialize access; one Client is not reentrant.
type Client struct {
	handler interface {
		Connect() error
		Close() error
	}
	mb      modbus.Client
	input   DefTable
	holding DefTable
}

// TCPConfig configures a Modbus TCP slave.
type TCPConfig struct {
	Remote  string
	UnitID  uint8
	Timeout time.Duration

	InputRegisters   DefTable
	HoldingRegisters DefTable
}

// RTUConfig configures a Modbus RTU slave on a serial line.
type RTUConfig struct {
	Port    string
	Slave   uint8
	Speed   int
	Timeout time.Duration

	InputRegisters   DefTable
	HoldingRegisters DefTable
}

// NewTCP builds an unconnected Modbus TCP client.
func NewTCP(cfg TCPConfig) (*Client, error) {
	if cfg.Remote == "" {
		return nil, errors.New("modbus tcp: remote required")
	}
	h := modbus.NewTCPClientHandler(cfg.Remote)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID
	return &Client{
		handler: h,
		mb:      modbus.NewClient(h),
		input:   cfg.InputRegisters,
		holding: cfg.HoldingRegisters,
	}, nil
}

// NewRTU builds an unconnected Modbus RTU client. Serial parameters
// beyond the baud rate keep goburrow's 8N1 defaults.
func NewRTU(cfg RTUConfig) (*Client, error) {
	if cfg.Port == "" {
		return nil, errors.New("modbus rtu: port required")
	}
	h := modbus.NewRTUClientHandler(cfg.Port)
	h.BaudRate = cfg.Speed
	h.DataBits = 8
	h.Parity = "N"
	h.StopBits = 1
	h.SlaveId = cfg.Slave
	h.Timeout = cfg.Timeout
	return &Client{
		handler: h,
		mb:      modbus.NewClient(h),
		input:   cfg.InputRegisters,
		holding: cfg.HoldingRegisters,
	}, nil
}

// Connect (re)establishes the transport. A previous dead connection is
// closed first so the handler dials fresh.
func (c *Client) Connect(_ context.Context) error {
	_ = c.handler.Close()
	if err := c.handler.Connect(); err != nil {
		return &device.NotConnectedError{Cause: err}
	}
	return nil
}

// ReadRegisters dumps every defined input and holding register.
// Undecodable fields are omitted and reported as joined FieldErrors;
// any transport or protocol failure aborts the dump.
func (c *Client) ReadRegisters(_ context.Context) (map[string]register.Value, error) {
	out := make(map[string]register.Value, len(c.input)+len(c.holding))
	var fieldErrs []error

	read := func(defs DefTable, fn readFn) error {
		for name, def := range defs {
			words, err := def.wordCount()
			if err != nil {
				fieldErrs = append(fieldErrs, &device.FieldError{Field: name, Cause: err})
				continue
			}
			raw, err := fn(def.Address, words)
			if err != nil {
				return wrapIOError(err)
			}
			val, err := def.decode(raw)
			if err != nil {
				fieldErrs = append(fieldErrs, &device.FieldError{Field: name, Cause: err})
				continue
			}
			out[name] = val
		}
		return nil
	}

	if err := read(c.input, c.mb.ReadInputRegisters); err != nil {
		return nil, err
	}
	if err := read(c.holding, c.mb.ReadHoldingRegisters); err != nil {
		return nil, err
	}

	if len(fieldErrs) > 0 {
		return out, errors.Join(fieldErrs...)
	}
	return out, nil
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.handler.Close()
}

// wrapIOError maps a goburrow failure onto the device error taxonomy.
func wrapIOError(err error) error {
	var mbErr *modbus.ModbusError
	if errors.As(err, &mbErr) {
		// The slave answered with an exception: transport is alive.
		return &device.RequestError{Cause: err}
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		// Slow response, not a dead link.
		return &device.RequestError{Cause: err}
	}
	if device.TransportDropped(err) {
		return &device.NotReachableError{Cause: err}
	}
	return &device.RequestError{Cause: fmt.Errorf("modbus read: %w", err)}
}
