// internal/sink/mqtt/mqtt_test.go
package mqtt

import (
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/telemetry-bridge/internal/register"
)

func TestTopicFor(t *testing.T) {
	assert.Equal(t, "telemetry/plc1", topicFor("telemetry", "plc1"))
	assert.Equal(t, "plc1", topicFor("", "plc1"))
}

func TestEncodePayload(t *testing.T) {
	body, err := encodePayload(map[string]register.Value{
		"count":   register.U16(5),
		"level":   register.Float32(1.5),
		"running": register.Bool(true),
	})
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, gojson.Unmarshal(body, &got))

	assert.Equal(t, float64(5), got["count"])
	assert.Equal(t, 1.5, got["level"])
	assert.Equal(t, true, got["running"])
}
