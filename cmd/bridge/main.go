// cmd/bridge/main.go
package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/telemetry-bridge/internal/bus"
	"github.com/tamzrod/telemetry-bridge/internal/config"
	"github.com/tamzrod/telemetry-bridge/internal/engine"
	"github.com/tamzrod/telemetry-bridge/internal/push"
)

func main() {
	configPath := flag.String("config", "config.yaml", "where to find the config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := logger.Sugar()

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	ctx := context.Background()

	// --------------------
	// Build devices and sinks
	// --------------------

	readTimeout := time.Duration(cfg.Timeout) * time.Second

	reg, err := buildDevices(cfg.Devices, readTimeout)
	if err != nil {
		log.Fatalf("device build failed: %v", err)
	}

	sinks, closeSinks, err := buildSinks(ctx, cfg.Remotes, log)
	if err != nil {
		log.Fatalf("sink build failed: %v", err)
	}
	defer closeSinks()

	// --------------------
	// Connect the whole fleet (fatal on any failure)
	// --------------------

	if err := engine.ConnectAll(ctx, reg, log); err != nil {
		log.Fatalf("initial connect failed: %v", err)
	}

	// --------------------
	// Pipeline: engine -> bus -> push coordinator
	// --------------------

	b := bus.New()

	coord, err := push.New(sinks, cfg.Push.MaxInFlightRounds, log)
	if err != nil {
		log.Fatalf("push coordinator build failed: %v", err)
	}
	go coord.Run(ctx, b.Subscribe())

	eng := engine.New(reg, engine.Config{
		Period:      time.Duration(cfg.Period) * time.Second,
		ReadTimeout: readTimeout,
		Reconnect: engine.ReconnectPolicy{
			InitialInterval: time.Duration(cfg.Reconnect.InitialIntervalMs) * time.Millisecond,
			MaxInterval:     time.Duration(cfg.Reconnect.MaxIntervalMs) * time.Millisecond,
			MaxRetries:      cfg.Reconnect.MaxRetries,
			AttemptTimeout:  time.Duration(cfg.Reconnect.AttemptTimeoutMs) * time.Millisecond,
		},
	}, log)

	log.Infow("bridge running",
		"devices", reg.Len(),
		"sinks", len(sinks),
		"period", cfg.Period,
	)

	// Blocks for the process lifetime; exit is via fatal error only.
	eng.Run(ctx, b)
}
