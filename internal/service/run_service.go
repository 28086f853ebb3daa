package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// RunService is the run coordinator: one invocation makes a single pass over
// a store's enabled variants, evaluates each through revenue → decision →
// mutation, isolates per-variant failures, and records one audit row.
type RunService interface {
	ExecuteRun(ctx context.Context, storeID uuid.UUID) (*model.AlgorithmRunRecord, error)
	ListRuns(ctx context.Context, storeID uuid.UUID, page, limit int) ([]model.AlgorithmRunRecord, int64, error)
}

type runService struct {
	configs  repository.PricingConfigRepository
	runs     repository.AlgorithmRunRepository
	revenue  RevenueService
	mutation MutationService

	parallelism int
}

func NewRunService(
	configs repository.PricingConfigRepository,
	runs repository.AlgorithmRunRepository,
	revenue RevenueService,
	mutation MutationService,
	parallelism int,
) RunService {
	if parallelism < 1 {
		parallelism = 1
	}
	return &runService{
		configs:     configs,
		runs:        runs,
		revenue:     revenue,
		mutation:    mutation,
		parallelism: parallelism,
	}
}

func (s *runService) ExecuteRun(ctx context.Context, storeID uuid.UUID) (*model.AlgorithmRunRecord, error) {
	configs, err := s.configs.ListEnabledByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &model.AlgorithmRunRecord{
		StoreID:   storeID,
		Processed: len(configs),
		Errors:    []string{},
	}

	var mu sync.Mutex

	// Variants have no data dependency on each other; only the external push
	// queue serializes them per store.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i := range configs {
		cfg := &configs[i]
		g.Go(func() error {
			outcome, err := s.processVariant(gctx, cfg, now)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				record.Errors = append(record.Errors,
					fmt.Sprintf("variant %s: %v", cfg.VariantID, err))
			case outcome == DecideIncrease:
				record.Increased++
			case outcome == DecideRevert:
				record.Reverted++
			default:
				record.Waiting++
			}
			// Per-variant failures never abort siblings.
			return nil
		})
	}
	_ = g.Wait()

	if err := s.runs.Create(ctx, record); err != nil {
		return nil, err
	}

	log.Info().
		Str("store_id", storeID.String()).
		Int("processed", record.Processed).
		Int("increased", record.Increased).
		Int("reverted", record.Reverted).
		Int("waiting", record.Waiting).
		Int("errors", len(record.Errors)).
		Msg("pricing run completed")
	return record, nil
}

// processVariant returns the decision action applied, or "" when the variant
// was skipped as waiting.
func (s *runService) processVariant(ctx context.Context, cfg *model.VariantPricingConfig, now time.Time) (DecisionAction, error) {
	// Terminal until an operator raises the cap.
	if cfg.State == model.StateAtMaxCap {
		return "", nil
	}
	// Post-revert cooldown still running.
	if cfg.State == model.StateWaitingAfterRevert && cfg.RevertWaitUntil != nil && now.Before(*cfg.RevertWaitUntil) {
		return "", nil
	}
	// General schedule gate (period cooldown or manual-edit reset).
	if cfg.NextEligibleAt != nil && now.Before(*cfg.NextEligibleAt) {
		return "", nil
	}

	variant := &cfg.Variant

	rev, err := s.revenue.Compare(ctx, cfg.VariantID, cfg.PeriodHours, now)
	if err != nil {
		return "", err
	}

	dec, err := Decide(cfg, variant, rev)
	if err != nil {
		return "", err
	}
	if _, err := s.mutation.Apply(ctx, cfg, variant, dec, rev, now); err != nil {
		return "", err
	}
	return dec.Action, nil
}

func (s *runService) ListRuns(ctx context.Context, storeID uuid.UUID, page, limit int) ([]model.AlgorithmRunRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return s.runs.ListByStore(ctx, storeID, page, limit)
}
