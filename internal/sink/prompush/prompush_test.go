// internal/sink/prompush/prompush_test.go
package prompush

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/telemetry-bridge/internal/register"
	"github.com/tamzrod/telemetry-bridge/internal/sink"
)

func TestGaugeName(t *testing.T) {
	cases := map[string]string{
		"temperature":     "temperature",
		"flow-rate":       "flow_rate",
		"tank/level":      "tank_level",
		"humidity[%]":     "humidity___",
		"plain_name":      "plain_name",
		"in-out/mix[a]%b": "in_out_mix_a__b",
	}
	for in, want := range cases {
		assert.Equal(t, want, GaugeName(in), in)
	}
}

func TestSendMeasurement_PushesToGateway(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := New(Config{Remote: srv.URL})
	require.NoError(t, err)

	values := map[string]register.Value{
		"temperature": register.Float32(float32(math.NaN())),
		"running":     register.Bool(true),
	}
	require.NoError(t, s.SendMeasurement(context.Background(), "press", values))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, paths, 1)
	assert.Contains(t, paths[0], "/metrics/job/press")
}

func TestSendMeasurement_DuplicateGaugeNameIsQueryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := New(Config{Remote: srv.URL})
	require.NoError(t, err)

	// Both names collapse to "a_b" after sanitization.
	values := map[string]register.Value{
		"a-b": register.U16(1),
		"a_b": register.U16(2),
	}
	err = s.SendMeasurement(context.Background(), "press", values)
	require.Error(t, err)

	var sendErr *sink.SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, sink.KindQuery, sendErr.Kind)
}

func TestSendMeasurement_GatewayErrorIsPushError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer srv.Close()

	s, err := New(Config{Remote: srv.URL})
	require.NoError(t, err)

	err = s.SendMeasurement(context.Background(), "press", map[string]register.Value{
		"v": register.U16(1),
	})
	require.Error(t, err)

	var sendErr *sink.SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, sink.KindPush, sendErr.Kind)
}
