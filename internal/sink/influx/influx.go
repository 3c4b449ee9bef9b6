// internal/sink/influx/influx.go
package influx

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/tamzrod/telemetry-bridge/internal/register"
	"github.com/tamzrod/telemetry-bridge/internal/sink"
)

// Config describes one InfluxDB remote.
type Config struct {
	Remote string // base URL
	Org    string
	Bucket string
	Token  string
}

// Sink writes one point per source per round into an InfluxDB bucket.
type Sink struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
}

var _ sink.RemoteSink = (*Sink)(nil)

// New connects to the remote and verifies it answers a ping. A remote
// that cannot be reached at startup is a configuration error, so the
// caller treats a New failure as fatal.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	if cfg.Remote == "" {
		return nil, errors.New("influx: remote required")
	}
	client := influxdb2.NewClient(cfg.Remote, cfg.Token)
	up, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influx: ping %s: %w", cfg.Remote, err)
	}
	if !up {
		client.Close()
		return nil, fmt.Errorf("influx: remote %s not ready", cfg.Remote)
	}
	return &Sink{
		client: client,
		write:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}, nil
}

// SendMeasurement writes one point named after the source, one field
// per register, timestamped at send time.
func (s *Sink) SendMeasurement(ctx context.Context, source string, values map[string]register.Value) error {
	fields := make(map[string]interface{}, len(values))
	for name, v := range values {
		fields[name] = v.Scalar()
	}

	point := influxdb2.NewPoint(source, nil, fields, time.Now())
	if err := s.write.WritePoint(ctx, point); err != nil {
		return &sink.SendError{Kind: sink.KindServer, Cause: err}
	}
	return nil
}

// Close releases the underlying HTTP client.
func (s *Sink) Close() {
	s.client.Close()
}
