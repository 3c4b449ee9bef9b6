// internal/sink/influx/influx_test.go
package influx

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/telemetry-bridge/internal/register"
)

// fakeInflux answers the ping and captures write bodies.
type fakeInflux struct {
	mu     sync.Mutex
	bodies []string
	status int
}

func (f *fakeInflux) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/ping") {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.bodies = append(f.bodies, string(body))
		f.mu.Unlock()
		status := f.status
		if status == 0 {
			status = http.StatusNoContent
		}
		w.WriteHeader(status)
	})
}

func (f *fakeInflux) lastBody() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bodies) == 0 {
		return ""
	}
	return f.bodies[len(f.bodies)-1]
}

func TestNew_PingFailureIsFatalToCaller(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(context.Background(), Config{Remote: srv.URL, Bucket: "b"})
	assert.Error(t, err)
}

func TestSendMeasurement_WritesLineProtocol(t *testing.T) {
	fake := &fakeInflux{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	s, err := New(context.Background(), Config{Remote: srv.URL, Org: "org", Bucket: "b"})
	require.NoError(t, err)
	defer s.Close()

	err = s.SendMeasurement(context.Background(), "electrolyzer", map[string]register.Value{
		"temperature": register.Float32(float32(math.NaN())),
	})
	require.NoError(t, err)

	body := fake.lastBody()
	assert.Contains(t, body, "electrolyzer")
	// NaN must cross the wire as the -1 sentinel.
	assert.Contains(t, body, "temperature=-1")
}

func TestSendMeasurement_ServerErrorSurfaces(t *testing.T) {
	fake := &fakeInflux{status: http.StatusInternalServerError}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	s, err := New(context.Background(), Config{Remote: srv.URL, Org: "org", Bucket: "b"})
	require.NoError(t, err)
	defer s.Close()

	err = s.SendMeasurement(context.Background(), "plc", map[string]register.Value{
		"v": register.U16(1),
	})
	assert.Error(t, err)
}
