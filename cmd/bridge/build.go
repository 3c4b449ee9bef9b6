// cmd/bridge/build.go
package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/telemetry-bridge/internal/config"
	devmodbus "github.com/tamzrod/telemetry-bridge/internal/device/modbus"
	devs7 "github.com/tamzrod/telemetry-bridge/internal/device/s7"
	"github.com/tamzrod/telemetry-bridge/internal/engine"
	"github.com/tamzrod/telemetry-bridge/internal/sink"
	"github.com/tamzrod/telemetry-bridge/internal/sink/influx"
	"github.com/tamzrod/telemetry-bridge/internal/sink/mqtt"
	"github.com/tamzrod/telemetry-bridge/internal/sink/prompush"
)

// buildDevices constructs one unconnected adapter per configured
// device and registers them all under their logical names.
func buildDevices(dc config.DevicesConfig, timeout time.Duration) (*engine.Registry, error) {
	reg := engine.NewRegistry()

	loadTable := func(path string) (devmodbus.DefTable, error) {
		if path == "" {
			return nil, nil
		}
		return devmodbus.LoadDefs(path)
	}

	for name, d := range dc.ModbusTCP {
		input, err := loadTable(d.InputRegisters)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", name, err)
		}
		holding, err := loadTable(d.HoldingRegisters)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", name, err)
		}
		dev, err := devmodbus.NewTCP(devmodbus.TCPConfig{
			Remote:           d.Remote,
			UnitID:           d.UnitID,
			Timeout:          timeout,
			InputRegisters:   input,
			HoldingRegisters: holding,
		})
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", name, err)
		}
		if err := reg.Add(name, dev); err != nil {
			return nil, err
		}
	}

	for name, d := range dc.ModbusRTU {
		input, err := loadTable(d.InputRegisters)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", name, err)
		}
		holding, err := loadTable(d.HoldingRegisters)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", name, err)
		}
		dev, err := devmodbus.NewRTU(devmodbus.RTUConfig{
			Port:             d.Port,
			Slave:            d.Slave,
			Speed:            d.Speed,
			Timeout:          timeout,
			InputRegisters:   input,
			HoldingRegisters: holding,
		})
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", name, err)
		}
		if err := reg.Add(name, dev); err != nil {
			return nil, err
		}
	}

	for name, d := range dc.S7 {
		defs, err := devs7.LoadDefs(d.Registers)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", name, err)
		}
		dev, err := devs7.New(devs7.Config{
			Remote:    d.Remote,
			Rack:      d.Rack,
			Slot:      d.Slot,
			Timeout:   timeout,
			Registers: defs,
		})
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", name, err)
		}
		if err := reg.Add(name, dev); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// buildSinks constructs every configured remote. Remotes that hold a
// connection (InfluxDB, MQTT) are contacted here, so a dead backend
// surfaces at startup rather than on the first round.
func buildSinks(ctx context.Context, rc config.RemotesConfig, log *zap.SugaredLogger) (map[string]sink.RemoteSink, func(), error) {
	sinks := make(map[string]sink.RemoteSink)
	var closers []func()

	closeAll := func() {
		for _, fn := range closers {
			fn()
		}
	}

	add := func(name string, s sink.RemoteSink) error {
		if _, exists := sinks[name]; exists {
			return fmt.Errorf("sink name %q used twice", name)
		}
		sinks[name] = s
		return nil
	}

	if len(rc.InfluxDB) == 0 {
		log.Infow("there is no influxdb remote")
	}
	for name, r := range rc.InfluxDB {
		s, err := influx.New(ctx, influx.Config{
			Remote: r.Remote,
			Org:    r.Org,
			Bucket: r.Bucket,
			Token:  r.Token,
		})
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("remote %s: %w", name, err)
		}
		closers = append(closers, s.Close)
		if err := add(name, s); err != nil {
			closeAll()
			return nil, nil, err
		}
		log.Infow("connected to influxdb remote", "remote", name)
	}

	for name, r := range rc.Prometheus {
		s, err := prompush.New(prompush.Config{Remote: r.Remote})
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("remote %s: %w", name, err)
		}
		if err := add(name, s); err != nil {
			closeAll()
			return nil, nil, err
		}
	}

	for name, r := range rc.MQTT {
		s, err := mqtt.New(mqtt.Config{
			Broker:      r.Broker,
			ClientID:    r.ClientID,
			TopicPrefix: r.TopicPrefix,
			QoS:         r.QoS,
		})
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("remote %s: %w", name, err)
		}
		closers = append(closers, s.Close)
		if err := add(name, s); err != nil {
			closeAll()
			return nil, nil, err
		}
		log.Infow("connected to mqtt remote", "remote", name)
	}

	return sinks, closeAll, nil
}
