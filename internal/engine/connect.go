// internal/engine/connect.go
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ConnectAll brings every registered device from unconnected to
// connected, one task per device, no concurrency cap. Any single
// failure fails the whole operation with the device named: this runs
// at initialization only, and a fleet that cannot fully connect is a
// configuration problem, not a runtime condition.
func ConnectAll(ctx context.Context, reg *Registry, log *zap.SugaredLogger) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, h := range reg.Handles() {
		h := h
		g.Go(func() error {
			h.mu.Lock()
			defer h.mu.Unlock()

			if err := h.dev.Connect(ctx); err != nil {
				return fmt.Errorf("could not connect to %s: %w", h.name, err)
			}
			h.connected = true
			log.Infow("connected to device", "device", h.name)
			return nil
		})
	}

	return g.Wait()
}
