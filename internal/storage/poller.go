package storage

import (
	"context"
	"time"

	"github.com/bassista/circum/internal/logger"
)

// StartPoller calls onTick every interval until ctx is done. It serves backends that
// cannot report outside changes themselves, such as redis shared by several kiosks.
// The returned channel is closed once the goroutine has exited.
func StartPoller(ctx context.Context, interval time.Duration, onTick func()) <-chan struct{} {
	done := make(chan struct{})
	log := logger.WithComponent("storage-poll")
	log.Debugf("starting storage poller with interval: %v", interval)
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Debug("storage poller stopped")
				return
			case <-ticker.C:
				log.Trace("storage poll tick")
				onTick()
			}
		}
	}()
	return done
}
