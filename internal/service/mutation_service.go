package service

import (
	"context"
	"errors"
	"time"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MutationService applies one pricing decision to one variant across the two
// systems of record. The ordering contract is strict:
//
//  1. Push the new price to the commerce platform. A failure here aborts with
//     ExternalAPIError and zero local writes — safe to retry next cycle.
//  2. Update the local price mirror.
//  3. Update the pricing config (schedule, state) via versioned CAS.
//  4. Append exactly one history entry.
//
// Any failure in 2–4 leaves the external price ahead of the local mirror and
// is surfaced as PersistenceError so a reconciliation pass can find it.
type MutationService interface {
	Apply(ctx context.Context, cfg *model.VariantPricingConfig, variant *model.Variant, dec Decision, rev *RevenueComparison, now time.Time) (*model.PricingHistoryEntry, error)
}

type mutationService struct {
	variants repository.VariantRepository
	configs  repository.PricingConfigRepository
	history  repository.PricingHistoryRepository
	pusher   ExternalPricePusher
}

func NewMutationService(
	variants repository.VariantRepository,
	configs repository.PricingConfigRepository,
	history repository.PricingHistoryRepository,
	pusher ExternalPricePusher,
) MutationService {
	return &mutationService{
		variants: variants,
		configs:  configs,
		history:  history,
		pusher:   pusher,
	}
}

func (s *mutationService) Apply(ctx context.Context, cfg *model.VariantPricingConfig, variant *model.Variant, dec Decision, rev *RevenueComparison, now time.Time) (*model.PricingHistoryEntry, error) {
	target := dec.TargetPrice
	action := model.ActionIncrease

	if dec.Action == DecideRevert {
		action = model.ActionRevert
		resolved, err := s.revertTarget(ctx, variant)
		if err != nil {
			return nil, err
		}
		target = resolved
	}

	oldPrice := variant.CurrentPrice

	// 1. External push first — no local writes until the platform accepted it.
	if err := s.pusher.PushPrice(ctx, variant.StoreID, variant.ExternalVariantID, target); err != nil {
		return nil, &ExternalAPIError{Err: err}
	}

	// 2. Local price mirror.
	if err := s.variants.UpdatePrice(ctx, variant.ID, target); err != nil {
		return nil, &PersistenceError{Op: "variant mirror", Err: err}
	}
	variant.CurrentPrice = target

	// 3. Config state + schedule.
	switch dec.Action {
	case DecideIncrease:
		cfg.State = model.StateIncreasing
		if dec.AtCap {
			cfg.State = model.StateAtMaxCap
		}
		cfg.RevertWaitUntil = nil
		next := now.Add(time.Duration(cfg.PeriodHours) * time.Hour)
		cfg.NextEligibleAt = &next
		cfg.LastSmartPrice = &target
	case DecideRevert:
		cfg.State = model.StateWaitingAfterRevert
		wait := now.Add(time.Duration(cfg.WaitHoursAfterRevert) * time.Hour)
		cfg.RevertWaitUntil = &wait
		cfg.NextEligibleAt = &wait
	}
	cfg.LastPriceChangeAt = &now

	if err := s.configs.UpdateVersioned(ctx, cfg); err != nil {
		// A CAS conflict after the external push already landed is still a
		// divergence, not a retryable no-op.
		return nil, &PersistenceError{Op: "pricing config", Err: err}
	}

	// 4. Audit history — exactly one entry per price mutation.
	entry := &model.PricingHistoryEntry{
		VariantID:             variant.ID,
		ProductID:             variant.ProductID,
		StoreID:               variant.StoreID,
		OldPrice:              oldPrice,
		NewPrice:              target,
		Action:                action,
		Reason:                dec.Reason,
		RevenuePreviousPeriod: rev.PreviousRevenue,
		RevenueCurrentPeriod:  rev.CurrentRevenue,
		RevenueChangePercent:  rev.ChangePercent,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return nil, &PersistenceError{Op: "pricing history", Err: err}
	}

	log.Info().
		Str("variant_id", variant.ID.String()).
		Str("action", string(action)).
		Str("old_price", oldPrice.StringFixed(2)).
		Str("new_price", target.StringFixed(2)).
		Str("reason", dec.Reason).
		Msg("price mutation applied")

	return entry, nil
}

// revertTarget is the OldPrice of the most recent increase entry; when the
// variant has never been increased, fall back to the starting price.
func (s *mutationService) revertTarget(ctx context.Context, variant *model.Variant) (decimal.Decimal, error) {
	last, err := s.history.LastIncrease(ctx, variant.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return variant.StartingPrice, nil
		}
		return decimal.Decimal{}, err
	}
	return last.OldPrice, nil
}
