// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is empty")
	}

	if cfg.Period <= 0 {
		return fmt.Errorf("period must be > 0 seconds")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0 seconds")
	}

	// ------------------------------------------------------------
	// DEVICE VALIDATION
	// ------------------------------------------------------------

	// A device name is never associated with two handles, so names
	// must be unique across all protocol families.
	owner := make(map[string]string)
	claim := func(name, family string) error {
		if name == "" {
			return fmt.Errorf("%s: device name must not be empty", family)
		}
		if prev, exists := owner[name]; exists {
			return fmt.Errorf(
				"device name %q used by both %s and %s",
				name, prev, family,
			)
		}
		owner[name] = family
		return nil
	}

	for name, d := range cfg.Devices.ModbusTCP {
		if err := claim(name, "modbus_tcp"); err != nil {
			return err
		}
		if d.Remote == "" {
			return fmt.Errorf("modbus_tcp device %q: remote required", name)
		}
		if d.InputRegisters == "" && d.HoldingRegisters == "" {
			return fmt.Errorf("modbus_tcp device %q: at least one register table required", name)
		}
	}

	for name, d := range cfg.Devices.ModbusRTU {
		if err := claim(name, "modbus_rtu"); err != nil {
			return err
		}
		if d.Port == "" {
			return fmt.Errorf("modbus_rtu device %q: port required", name)
		}
		if d.Speed <= 0 {
			return fmt.Errorf("modbus_rtu device %q: speed must be > 0", name)
		}
		if d.InputRegisters == "" && d.HoldingRegisters == "" {
			return fmt.Errorf("modbus_rtu device %q: at least one register table required", name)
		}
	}

	for name, d := range cfg.Devices.S7 {
		if err := claim(name, "s7"); err != nil {
			return err
		}
		if d.Remote == "" {
			return fmt.Errorf("s7 device %q: remote required", name)
		}
		if d.Registers == "" {
			return fmt.Errorf("s7 device %q: registers required", name)
		}
	}

	if len(owner) == 0 {
		return fmt.Errorf("at least one device required")
	}

	// ------------------------------------------------------------
	// REMOTE VALIDATION
	// ------------------------------------------------------------

	for name, r := range cfg.Remotes.InfluxDB {
		if name == "" {
			return fmt.Errorf("influx_db: remote name must not be empty")
		}
		if r.Remote == "" {
			return fmt.Errorf("influx_db remote %q: remote required", name)
		}
		if r.Bucket == "" {
			return fmt.Errorf("influx_db remote %q: bucket required", name)
		}
	}

	for name, r := range cfg.Remotes.Prometheus {
		if name == "" {
			return fmt.Errorf("prometheus: remote name must not be empty")
		}
		if r.Remote == "" {
			return fmt.Errorf("prometheus remote %q: remote required", name)
		}
	}

	for name, r := range cfg.Remotes.MQTT {
		if name == "" {
			return fmt.Errorf("mqtt: remote name must not be empty")
		}
		if r.Broker == "" {
			return fmt.Errorf("mqtt remote %q: broker required", name)
		}
		if r.QoS > 2 {
			return fmt.Errorf("mqtt remote %q: qos must be 0, 1 or 2", name)
		}
	}

	// ------------------------------------------------------------
	// TUNING VALIDATION
	// ------------------------------------------------------------

	if cfg.Reconnect.InitialIntervalMs < 0 ||
		cfg.Reconnect.MaxIntervalMs < 0 ||
		cfg.Reconnect.AttemptTimeoutMs < 0 {
		return fmt.Errorf("reconnect intervals must be >= 0")
	}
	if cfg.Push.MaxInFlightRounds < 0 {
		return fmt.Errorf("push.max_in_flight_rounds must be >= 0")
	}

	return nil
}
