// internal/sink/mqtt/mqtt.go
package mqtt

import (
	"context"
	"errors"
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	gojson "github.com/goccy/go-json"

	"github.com/tamzrod/telemetry-bridge/internal/register"
	"github.com/tamzrod/telemetry-bridge/internal/sink"
)

// Config describes one MQTT broker remote.
type Config struct {
	Broker      string // e.g. tcp://broker:1883
	ClientID    string
	TopicPrefix string
	QoS         byte
}

// Sink publishes one JSON payload per source per round under
// <prefix>/<source>.
type Sink struct {
	client pahomqtt.Client
	prefix string
	qos    byte
}

var _ sink.RemoteSink = (*Sink)(nil)

// New connects to the broker. Like the other remotes, an unreachable
// broker at startup is treated as fatal by the caller; afterwards the
// paho client reconnects on its own.
func New(cfg Config) (*Sink, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt: broker required")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "telemetry-bridge"
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true)

	client := pahomqtt.NewClient(opts)
	if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", cfg.Broker, tok.Error())
	}

	return &Sink{client: client, prefix: cfg.TopicPrefix, qos: cfg.QoS}, nil
}

// SendMeasurement publishes the source's field map as one JSON object.
func (s *Sink) SendMeasurement(_ context.Context, source string, values map[string]register.Value) error {
	if !s.client.IsConnected() {
		return &sink.SendError{Kind: sink.KindDisconnected, Cause: errors.New("broker connection down")}
	}

	body, err := encodePayload(values)
	if err != nil {
		return &sink.SendError{Kind: sink.KindQuery, Cause: err}
	}

	tok := s.client.Publish(topicFor(s.prefix, source), s.qos, false, body)
	if tok.Wait() && tok.Error() != nil {
		return &sink.SendError{Kind: sink.KindPush, Cause: tok.Error()}
	}
	return nil
}

// Close disconnects from the broker, letting in-flight work settle.
func (s *Sink) Close() {
	s.client.Disconnect(250)
}

func topicFor(prefix, source string) string {
	if prefix == "" {
		return source
	}
	return prefix + "/" + source
}

func encodePayload(values map[string]register.Value) ([]byte, error) {
	fields := make(map[string]interface{}, len(values))
	for name, v := range values {
		fields[name] = v.Scalar()
	}
	return gojson.Marshal(fields)
}
