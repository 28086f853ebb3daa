package worker

// scheduler.go
// Optional background goroutine that enqueues a pricing-run job for every
// active store on a fixed interval. Deployments that drive runs from an
// external scheduler leave this disabled (interval = 0) and hit the runs
// endpoint instead.

import (
	"context"
	"time"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/repository"

	"github.com/rs/zerolog/log"
)

// SchedulerConfig holds all dependencies for the scheduler goroutine.
type SchedulerConfig struct {
	Stores     repository.StoreRepository
	Dispatcher *Dispatcher
	Interval   time.Duration
}

// StartRunScheduler launches a ticker goroutine that fans a run job out to
// every active store. It respects the context for graceful shutdown.
func StartRunScheduler(ctx context.Context, cfg SchedulerConfig) {
	if cfg.Interval <= 0 {
		log.Info().Msg("run scheduler disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("run scheduler started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("run scheduler shutting down")
				return
			case <-ticker.C:
				enqueueAll(ctx, cfg)
			}
		}
	}()
}

func enqueueAll(ctx context.Context, cfg SchedulerConfig) {
	stores, err := cfg.Stores.ListActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("run scheduler: failed to list stores")
		return
	}
	for _, store := range stores {
		if err := cfg.Dispatcher.EnqueueRun(ctx, store.ID); err != nil {
			log.Error().Err(err).Str("store_id", store.ID.String()).Msg("run scheduler: enqueue failed")
		}
	}
}
