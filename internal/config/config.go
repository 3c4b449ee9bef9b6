// internal/config/config.go
package config

type Config struct {
	// Period is the polling interval in seconds.
	Period int `yaml:"period"`

	// Timeout is the optional per-device read timeout in seconds.
	// Zero means unbounded.
	Timeout int `yaml:"timeout"`

	Devices DevicesConfig `yaml:"devices"`
	Remotes RemotesConfig `yaml:"remotes"`

	Reconnect ReconnectConfig `yaml:"reconnect"`
	Push      PushConfig      `yaml:"push"`
}

// ---- DEVICES ----

// DevicesConfig groups the fleet by protocol family. Each family is
// optional; names are user-chosen and unique across families.
type DevicesConfig struct {
	ModbusTCP map[string]ModbusTCPConfig `yaml:"modbus_tcp"`
	ModbusRTU map[string]ModbusRTUConfig `yaml:"modbus_rtu"`
	S7        map[string]S7Config        `yaml:"s7"`
}

type ModbusTCPConfig struct {
	Remote           string `yaml:"remote"`
	UnitID           uint8  `yaml:"unit_id"`
	InputRegisters   string `yaml:"input_registers"`   // JSON defs path
	HoldingRegisters string `yaml:"holding_registers"` // JSON defs path
}

type ModbusRTUConfig struct {
	Port             string `yaml:"port"`
	Slave            uint8  `yaml:"slave"`
	Speed            int    `yaml:"speed"`
	InputRegisters   string `yaml:"input_registers"`
	HoldingRegisters string `yaml:"holding_registers"`
}

type S7Config struct {
	Remote    string `yaml:"remote"`
	Rack      int    `yaml:"rack"`
	Slot      int    `yaml:"slot"`
	Registers string `yaml:"registers"` // JSON defs path
}

// ---- REMOTES ----

// RemotesConfig groups the sinks by backend family, each keyed by a
// user-chosen name so the same backend type can appear more than once.
type RemotesConfig struct {
	InfluxDB   map[string]InfluxConfig     `yaml:"influx_db"`
	Prometheus map[string]PrometheusConfig `yaml:"prometheus"`
	MQTT       map[string]MQTTConfig       `yaml:"mqtt"`
}

type InfluxConfig struct {
	Remote string `yaml:"remote"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
	Token  string `yaml:"token"`
}

type PrometheusConfig struct {
	Remote string `yaml:"remote"`
}

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         uint8  `yaml:"qos"`
}

// ---- RECONNECT ----

type ReconnectConfig struct {
	InitialIntervalMs int    `yaml:"initial_interval_ms"`
	MaxIntervalMs     int    `yaml:"max_interval_ms"`
	MaxRetries        uint64 `yaml:"max_retries"`
	AttemptTimeoutMs  int    `yaml:"attempt_timeout_ms"`
}

// ---- PUSH ----

type PushConfig struct {
	MaxInFlightRounds int `yaml:"max_in_flight_rounds"`
}
