package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/config"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/infra"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/router"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// One circuit breaker guards every outbound call to the commerce platform.
	commerceCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	r, deps := router.New(cfg, db, rdb, commerceCB)

	// Pricing runs execute asynchronously: HTTP triggers and the optional
	// scheduler both enqueue jobs; the pool drains them.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerHandlers := &worker.WorkerHandlers{Run: deps.RunWorker}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	worker.StartRunScheduler(ctx, worker.SchedulerConfig{
		Stores:     deps.Stores,
		Dispatcher: deps.Dispatcher,
		Interval:   time.Duration(cfg.RunSchedulerIntervalMin) * time.Minute,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("smart pricing backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
