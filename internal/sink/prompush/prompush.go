// internal/sink/prompush/prompush.go
package prompush

import (
	"context"
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/tamzrod/telemetry-bridge/internal/register"
	"github.com/tamzrod/telemetry-bridge/internal/sink"
)

// Config describes one Prometheus push-gateway remote.
type Config struct {
	Remote string // gateway base URL
}

// Sink pushes one gauge per register to a push gateway, grouped under
// the source name as the job label.
type Sink struct {
	url string
}

var _ sink.RemoteSink = (*Sink)(nil)

// New builds a push-gateway sink. The gateway is not contacted until
// the first push.
func New(cfg Config) (*Sink, error) {
	if cfg.Remote == "" {
		return nil, errors.New("prompush: remote required")
	}
	return &Sink{url: cfg.Remote}, nil
}

// SendMeasurement registers one gauge per field in a throwaway
// registry and pushes the whole registry under the source's job name.
func (s *Sink) SendMeasurement(ctx context.Context, source string, values map[string]register.Value) error {
	reg := prometheus.NewRegistry()

	for field, v := range values {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Name: GaugeName(field),
			Help: field,
		})
		gauge.Set(v.Float64())
		if err := reg.Register(gauge); err != nil {
			return &sink.SendError{Kind: sink.KindQuery, Cause: err}
		}
	}

	if err := push.New(s.url, source).Gatherer(reg).PushContext(ctx); err != nil {
		return &sink.SendError{Kind: sink.KindPush, Cause: err}
	}
	return nil
}

// GaugeName maps a register name onto the metric-name alphabet.
// The replacement set is locked: '-', '/', '[', ']' and '%' become '_'.
var gaugeNameReplacer = strings.NewReplacer(
	"-", "_",
	"/", "_",
	"[", "_",
	"]", "_",
	"%", "_",
)

func GaugeName(field string) string {
	return gaugeNameReplacer.Replace(field)
}
