// internal/device/s7/client.go
package s7

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/robinson/gos7"

	"github.com/tamzrod/telemetry-bridge/internal/device"
	"github.com/tamzrod/telemetry-bridge/internal/register"
)

// Client implements device.Device for Siemens S7 PLCs over ISO-on-TCP.
// Callers serialize access; one Client is not reentrant.
type Client struct {
	handler *gos7.TCPClientHandler
	s7      gos7.Client
	defs    DefTable
}

// Config configures one S7 PLC.
type Config struct {
	Remote    string // host:port, port 102 by convention
	Rack      int
	Slot      int
	Timeout   time.Duration
	Registers DefTable
}

// New builds an unconnected S7 client.
func New(cfg Config) (*Client, error) {
	if cfg.Remote == "" {
		return nil, errors.New("s7: remote required")
	}
	h := gos7.NewTCPClientHandler(cfg.Remote, cfg.Rack, cfg.Slot)
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &Client{
		handler: h,
		s7:      gos7.NewClient(h),
		defs:    cfg.Registers,
	}, nil
}

// Connect (re)establishes the ISO-on-TCP session.
func (c *Client) Connect(_ context.Context) error {
	_ = c.handler.Close()
	if err := c.handler.Connect(); err != nil {
		return &device.NotConnectedError{Cause: err}
	}
	return nil
}

// ReadRegisters dumps every defined data-block entry.
func (c *Client) ReadRegisters(_ context.Context) (map[string]register.Value, error) {
	out := make(map[string]register.Value, len(c.defs))
	var fieldErrs []error

	for name, def := range c.defs {
		size, err := def.byteCount()
		if err != nil {
			fieldErrs = append(fieldErrs, &device.FieldError{Field: name, Cause: err})
			continue
		}
		buf := make([]byte, size)
		if err := c.s7.AGReadDB(def.DB, def.Offset, size, buf); err != nil {
			return nil, wrapIOError(err)
		}
		val, err := def.decode(buf)
		if err != nil {
			fieldErrs = append(fieldErrs, &device.FieldError{Field: name, Cause: err})
			continue
		}
		out[name] = val
	}

	if len(fieldErrs) > 0 {
		return out, errors.Join(fieldErrs...)
	}
	return out, nil
}

// Close releases the underlying session.
func (c *Client) Close() error {
	return c.handler.Close()
}

func wrapIOError(err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return &device.RequestError{Cause: err}
	}
	if device.TransportDropped(err) {
		return &device.NotReachableError{Cause: err}
	}
	return &device.RequestError{Cause: fmt.Errorf("s7 read: %w", err)}
}

// ---- definitions ----

// Def describes one named entry inside an S7 data block.
type Def struct {
	DB     int    `json:"db"`
	Offset int    `json:"offset"`
	Type   string `json:"type"`
	Bit    uint8  `json:"bit,omitempty"`    // "bool" type only
	Length int    `json:"length,omitempty"` // byte count, "bytes" type only
}

// DefTable maps register name to its definition.
type DefTable map[string]Def

func (d Def) byteCount() (int, error) {
	switch d.Type {
	case "bool":
		return 1, nil
	case "u16", "s16", "enum16":
		return 2, nil
	case "u32", "s32", "f32":
		return 4, nil
	case "u64", "s64":
		return 8, nil
	case "bytes":
		if d.Length <= 0 {
			return 0, fmt.Errorf("bytes register needs a length")
		}
		return d.Length, nil
	default:
		return 0, fmt.Errorf("unknown register type %q", d.Type)
	}
}

// decode converts the raw data-block bytes into a Value. S7 stores
// multi-byte quantities big-endian.
func (d Def) decode(raw []byte) (register.Value, error) {
	size, err := d.byteCount()
	if err != nil {
		return register.Value{}, err
	}
	if len(raw) < size {
		return register.Value{}, fmt.Errorf("short payload: got %d bytes, want %d", len(raw), size)
	}

	switch d.Type {
	case "bool":
		if d.Bit > 7 {
			return register.Value{}, fmt.Errorf("bit index %d out of range", d.Bit)
		}
		return register.Bool(raw[0]&(1<<d.Bit) != 0), nil
	case "u16":
		return register.U16(binary.BigEndian.Uint16(raw)), nil
	case "s16":
		return register.S16(int16(binary.BigEndian.Uint16(raw))), nil
	case "enum16":
		return register.Enum16(binary.BigEndian.Uint16(raw)), nil
	case "u32":
		return register.U32(binary.BigEndian.Uint32(raw)), nil
	case "s32":
		return register.S32(int32(binary.BigEndian.Uint32(raw))), nil
	case "f32":
		return register.Float32(math.Float32frombits(binary.BigEndian.Uint32(raw))), nil
	case "u64":
		return register.U64(binary.BigEndian.Uint64(raw)), nil
	case "s64":
		return register.S64(int64(binary.BigEndian.Uint64(raw))), nil
	case "bytes":
		blob := make([]byte, size)
		copy(blob, raw)
		return register.Bytes(blob), nil
	default:
		return register.Value{}, fmt.Errorf("unknown register type %q", d.Type)
	}
}
