// internal/engine/engine_test.go
package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tamzrod/telemetry-bridge/internal/device"
	"github.com/tamzrod/telemetry-bridge/internal/register"
)

// fakeDevice implements device.Device with pluggable behavior.
type fakeDevice struct {
	connect func(ctx context.Context) error
	read    func(ctx context.Context) (map[string]register.Value, error)
}

func (f *fakeDevice) Connect(ctx context.Context) error {
	if f.connect == nil {
		return nil
	}
	return f.connect(ctx)
}

func (f *fakeDevice) ReadRegisters(ctx context.Context) (map[string]register.Value, error) {
	return f.read(ctx)
}

func okRead(val uint16) func(ctx context.Context) (map[string]register.Value, error) {
	return func(context.Context) (map[string]register.Value, error) {
		return map[string]register.Value{"v": register.U16(val)}, nil
	}
}

func testEngine(t *testing.T, reg *Registry, cfg Config) *Engine {
	t.Helper()
	if cfg.Period == 0 {
		cfg.Period = time.Second
	}
	return New(reg, cfg, zap.NewNop().Sugar())
}

func TestRegistry_RejectsDuplicateName(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add("plc", &fakeDevice{}))
	assert.Error(t, reg.Add("plc", &fakeDevice{}))
}

func TestConnectAll_AllSucceed(t *testing.T) {
	reg := NewRegistry()
	var calls atomic.Int32
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, reg.Add(name, &fakeDevice{
			connect: func(context.Context) error {
				calls.Add(1)
				return nil
			},
			read: okRead(1),
		}))
	}

	err := ConnectAll(context.Background(), reg, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	for _, h := range reg.Handles() {
		assert.True(t, h.Connected())
	}
}

func TestConnectAll_FailureNamesDevice(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add("good", &fakeDevice{read: okRead(1)}))
	require.NoError(t, reg.Add("broken", &fakeDevice{
		connect: func(context.Context) error { return errors.New("refused") },
		read:    okRead(1),
	}))

	err := ConnectAll(context.Background(), reg, zap.NewNop().Sugar())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

// Scenario A: three devices, all connected; one times out during the
// cycle; the snapshot has exactly two device keys.
func TestPollOnce_TimeoutOmitsDevice(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add("fast1", &fakeDevice{read: okRead(1)}))
	require.NoError(t, reg.Add("fast2", &fakeDevice{read: okRead(2)}))
	require.NoError(t, reg.Add("slow", &fakeDevice{
		read: func(ctx context.Context) (map[string]register.Value, error) {
			time.Sleep(200 * time.Millisecond)
			return map[string]register.Value{"v": register.U16(3)}, nil
		},
	}))

	e := testEngine(t, reg, Config{ReadTimeout: 30 * time.Millisecond})
	snap := e.PollOnce(context.Background())

	assert.Len(t, snap, 2)
	assert.Contains(t, snap, "fast1")
	assert.Contains(t, snap, "fast2")
	assert.NotContains(t, snap, "slow")
	// A timeout is not evidence of a dead transport.
	for _, h := range reg.Handles() {
		if h.Name() == "slow" {
			assert.False(t, h.Connected()) // never marked speculatively
		}
	}
}

// Scenario B: a connectivity failure triggers a reconnect; the device
// is absent this cycle and present again the next.
func TestPollOnce_ReconnectRecoversNextCycle(t *testing.T) {
	var reads, connects atomic.Int32
	dev := &fakeDevice{
		connect: func(context.Context) error {
			connects.Add(1)
			return nil
		},
		read: func(context.Context) (map[string]register.Value, error) {
			if reads.Add(1) == 1 {
				return nil, &device.NotReachableError{Cause: errors.New("connection reset")}
			}
			return map[string]register.Value{"v": register.U16(9)}, nil
		},
	}

	reg := NewRegistry()
	require.NoError(t, reg.Add("flaky", dev))

	e := testEngine(t, reg, Config{
		Reconnect: ReconnectPolicy{
			InitialInterval: time.Millisecond,
			MaxInterval:     2 * time.Millisecond,
			MaxRetries:      3,
		},
	})

	// Cycle 1: read fails, reconnect succeeds, device still omitted.
	snap := e.PollOnce(context.Background())
	assert.Empty(t, snap)
	assert.GreaterOrEqual(t, connects.Load(), int32(1))

	// Cycle 2: device contributes again.
	snap = e.PollOnce(context.Background())
	require.Contains(t, snap, "flaky")
	assert.Equal(t, register.U16(9), snap["flaky"]["v"])
}

func TestPollOnce_ReconnectExhaustsBudget(t *testing.T) {
	var connects atomic.Int32
	dev := &fakeDevice{
		connect: func(context.Context) error {
			connects.Add(1)
			return errors.New("still down")
		},
		read: func(context.Context) (map[string]register.Value, error) {
			return nil, &device.NotReachableError{Cause: errors.New("broken pipe")}
		},
	}

	reg := NewRegistry()
	require.NoError(t, reg.Add("down", dev))

	e := testEngine(t, reg, Config{
		Reconnect: ReconnectPolicy{
			InitialInterval: time.Millisecond,
			MaxInterval:     2 * time.Millisecond,
			MaxRetries:      2,
		},
	})

	snap := e.PollOnce(context.Background())
	assert.Empty(t, snap)
	// Initial attempt plus two retries.
	assert.Equal(t, int32(3), connects.Load())
	for _, h := range reg.Handles() {
		assert.False(t, h.Connected())
	}
}

func TestPollOnce_SkipCycleLeavesConnectionAlone(t *testing.T) {
	var connects atomic.Int32
	dev := &fakeDevice{
		connect: func(context.Context) error {
			connects.Add(1)
			return nil
		},
		read: func(context.Context) (map[string]register.Value, error) {
			return nil, &device.RequestError{Cause: errors.New("malformed response")}
		},
	}

	reg := NewRegistry()
	require.NoError(t, reg.Add("glitchy", dev))
	require.NoError(t, ConnectAll(context.Background(), reg, zap.NewNop().Sugar()))

	e := testEngine(t, reg, Config{})
	snap := e.PollOnce(context.Background())

	assert.Empty(t, snap)
	assert.Equal(t, int32(1), connects.Load()) // only the initial connect
}

func TestPollOnce_DropFieldKeepsRest(t *testing.T) {
	dev := &fakeDevice{
		read: func(context.Context) (map[string]register.Value, error) {
			return map[string]register.Value{
					"pressure": register.Float32(1.2),
				}, &device.FieldError{
					Field: "temperature",
					Cause: errors.New("unknown type"),
				}
		},
	}

	reg := NewRegistry()
	require.NoError(t, reg.Add("plc", dev))

	e := testEngine(t, reg, Config{})
	snap := e.PollOnce(context.Background())

	require.Contains(t, snap, "plc")
	assert.Len(t, snap["plc"], 1)
	assert.Contains(t, snap["plc"], "pressure")
}

func TestPollOnce_AllFieldsDroppedOmitsDevice(t *testing.T) {
	dev := &fakeDevice{
		read: func(context.Context) (map[string]register.Value, error) {
			return map[string]register.Value{}, &device.FieldError{
				Field: "only",
				Cause: errors.New("bad"),
			}
		},
	}

	reg := NewRegistry()
	require.NoError(t, reg.Add("plc", dev))

	e := testEngine(t, reg, Config{})
	snap := e.PollOnce(context.Background())

	// Never publish a device key with an empty field map.
	assert.Empty(t, snap)
}

func TestPollOnce_EmptyFleetPublishesEmptySnapshot(t *testing.T) {
	e := testEngine(t, NewRegistry(), Config{})
	snap := e.PollOnce(context.Background())
	assert.NotNil(t, snap)
	assert.Empty(t, snap)
}
