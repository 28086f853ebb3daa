package service

import (
	"context"
	"errors"
	"time"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/dto"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Resume options accepted by the config API.
const (
	ResumeOptionBase = "base"
	ResumeOptionLast = "last"
)

// ToggleService implements enable, disable and resume-with-choice for single
// variants, plus batch toggles over a product or a whole store with
// pre-mutation snapshotting and compensating undo.
type ToggleService interface {
	Enable(ctx context.Context, variantID uuid.UUID) (*dto.PricingConfigResponse, error)
	Disable(ctx context.Context, variantID uuid.UUID) (*dto.PricingConfigResponse, error)
	Resume(ctx context.Context, variantID uuid.UUID, option string) (*dto.PricingConfigResponse, error)
	ToggleProduct(ctx context.Context, productID uuid.UUID, enable bool) (*dto.BatchToggleResponse, error)
	ToggleStore(ctx context.Context, storeID uuid.UUID, enable bool) (*dto.BatchToggleResponse, error)
	Undo(ctx context.Context, req dto.UndoRequest) (*dto.UndoResponse, error)
}

type toggleService struct {
	variants repository.VariantRepository
	configs  repository.PricingConfigRepository
	history  repository.PricingHistoryRepository
	pusher   ExternalPricePusher

	activationBumpPercent decimal.Decimal
}

func NewToggleService(
	variants repository.VariantRepository,
	configs repository.PricingConfigRepository,
	history repository.PricingHistoryRepository,
	pusher ExternalPricePusher,
	activationBumpPercent float64,
) ToggleService {
	return &toggleService{
		variants:              variants,
		configs:               configs,
		history:               history,
		pusher:                pusher,
		activationBumpPercent: decimal.NewFromFloat(activationBumpPercent),
	}
}

// ── Enable ────────────────────────────────────────────────────────────────────

func (s *toggleService) Enable(ctx context.Context, variantID uuid.UUID) (*dto.PricingConfigResponse, error) {
	variant, err := s.variants.FindByID(ctx, variantID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.configs.FindByVariantID(ctx, variantID)
	isNew := false
	if errors.Is(err, repository.ErrNotFound) {
		cfg = defaultConfig(variantID)
		isNew = true
	} else if err != nil {
		return nil, err
	}

	// Re-enabling an already-enabled variant must not re-apply the bump.
	if !isNew && cfg.AutoPricingEnabled {
		return configToResponse(cfg, variant), nil
	}

	// Baseline is captured exactly once, at first activation.
	if cfg.BaselinePrice == nil {
		baseline := variant.CurrentPrice
		cfg.BaselinePrice = &baseline
	}

	// One-time activation bump, still subject to the max-cap ceiling.
	one := decimal.NewFromInt(1)
	target := variant.CurrentPrice.Mul(one.Add(s.activationBumpPercent.Div(hundred))).Round(2)
	ceiling := variant.StartingPrice.Mul(one.Add(cfg.MaxIncreasePercent.Div(hundred))).Round(2)
	atCap := false
	if target.GreaterThan(ceiling) {
		target = ceiling
		atCap = true
	}

	now := time.Now()
	oldPrice := variant.CurrentPrice

	if err := s.pusher.PushPrice(ctx, variant.StoreID, variant.ExternalVariantID, target); err != nil {
		return nil, &ExternalAPIError{Err: err}
	}
	if err := s.variants.UpdatePrice(ctx, variant.ID, target); err != nil {
		return nil, &PersistenceError{Op: "variant mirror", Err: err}
	}
	variant.CurrentPrice = target

	cfg.AutoPricingEnabled = true
	cfg.State = model.StateIncreasing
	if atCap {
		cfg.State = model.StateAtMaxCap
	}
	cfg.NextEligibleAt = nil
	cfg.RevertWaitUntil = nil
	cfg.LastPriceChangeAt = &now
	cfg.LastSmartPrice = &target

	if isNew {
		if err := s.configs.Create(ctx, cfg); err != nil {
			return nil, &PersistenceError{Op: "pricing config", Err: err}
		}
	} else if err := s.configs.UpdateVersioned(ctx, cfg); err != nil {
		return nil, &PersistenceError{Op: "pricing config", Err: err}
	}

	if err := s.appendToggleHistory(ctx, variant, oldPrice, target, model.ActionIncrease, "smart pricing enabled (activation bump)"); err != nil {
		return nil, err
	}
	return configToResponse(cfg, variant), nil
}

// ── Disable ───────────────────────────────────────────────────────────────────

func (s *toggleService) Disable(ctx context.Context, variantID uuid.UUID) (*dto.PricingConfigResponse, error) {
	variant, err := s.variants.FindByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configs.FindByVariantID(ctx, variantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrConfigNotFound
	} else if err != nil {
		return nil, err
	}

	// Remember where smart pricing left off so "resume last" can return here.
	lastSmart := variant.CurrentPrice

	// Baseline was never captured when a variant is disabled before any cycle
	// ran — fall back to the starting price.
	target := variant.StartingPrice
	if cfg.BaselinePrice != nil {
		target = *cfg.BaselinePrice
	}

	now := time.Now()
	oldPrice := variant.CurrentPrice

	if err := s.pusher.PushPrice(ctx, variant.StoreID, variant.ExternalVariantID, target); err != nil {
		return nil, &ExternalAPIError{Err: err}
	}
	if err := s.variants.UpdatePrice(ctx, variant.ID, target); err != nil {
		return nil, &PersistenceError{Op: "variant mirror", Err: err}
	}
	variant.CurrentPrice = target

	cfg.AutoPricingEnabled = false
	cfg.State = model.StateIncreasing
	cfg.RevertWaitUntil = nil
	cfg.NextEligibleAt = nil
	cfg.LastPriceChangeAt = &now
	cfg.LastSmartPrice = &lastSmart

	if err := s.configs.UpdateVersioned(ctx, cfg); err != nil {
		return nil, &PersistenceError{Op: "pricing config", Err: err}
	}
	if err := s.appendToggleHistory(ctx, variant, oldPrice, target, model.ActionRevert, "smart pricing disabled"); err != nil {
		return nil, err
	}
	return configToResponse(cfg, variant), nil
}

// ── Resume ────────────────────────────────────────────────────────────────────

func (s *toggleService) Resume(ctx context.Context, variantID uuid.UUID, option string) (*dto.PricingConfigResponse, error) {
	if option != ResumeOptionBase && option != ResumeOptionLast {
		return nil, &ValidationError{Msg: "resume option must be \"base\" or \"last\""}
	}

	variant, err := s.variants.FindByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configs.FindByVariantID(ctx, variantID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrConfigNotFound
	} else if err != nil {
		return nil, err
	}

	target := variant.CurrentPrice
	action := model.ActionResumeBase
	reason := "smart pricing resumed from baseline price"
	switch option {
	case ResumeOptionBase:
		if cfg.BaselinePrice != nil {
			target = *cfg.BaselinePrice
		}
	case ResumeOptionLast:
		action = model.ActionResumeLast
		reason = "smart pricing resumed from last smart price"
		if cfg.LastSmartPrice != nil {
			target = *cfg.LastSmartPrice
		}
	}

	now := time.Now()
	oldPrice := variant.CurrentPrice

	if err := s.pusher.PushPrice(ctx, variant.StoreID, variant.ExternalVariantID, target); err != nil {
		return nil, &ExternalAPIError{Err: err}
	}
	if err := s.variants.UpdatePrice(ctx, variant.ID, target); err != nil {
		return nil, &PersistenceError{Op: "variant mirror", Err: err}
	}
	variant.CurrentPrice = target

	cfg.AutoPricingEnabled = true
	cfg.State = model.StateIncreasing
	cfg.RevertWaitUntil = nil
	cfg.NextEligibleAt = nil
	cfg.LastPriceChangeAt = &now

	if err := s.configs.UpdateVersioned(ctx, cfg); err != nil {
		return nil, &PersistenceError{Op: "pricing config", Err: err}
	}
	if err := s.appendToggleHistory(ctx, variant, oldPrice, target, action, reason); err != nil {
		return nil, err
	}
	return configToResponse(cfg, variant), nil
}

// ── Batch toggles ─────────────────────────────────────────────────────────────
// Each variant is snapshotted BEFORE it is mutated, and mutated independently:
// one failure never blocks or rolls back its siblings. The caller receives
// every snapshot regardless of outcome so a later undo can replay them.

func (s *toggleService) ToggleProduct(ctx context.Context, productID uuid.UUID, enable bool) (*dto.BatchToggleResponse, error) {
	variants, err := s.variants.ListByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.toggleAll(ctx, variants, enable), nil
}

func (s *toggleService) ToggleStore(ctx context.Context, storeID uuid.UUID, enable bool) (*dto.BatchToggleResponse, error) {
	variants, err := s.variants.ListByStoreID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return s.toggleAll(ctx, variants, enable), nil
}

func (s *toggleService) toggleAll(ctx context.Context, variants []model.Variant, enable bool) *dto.BatchToggleResponse {
	resp := &dto.BatchToggleResponse{
		Outcomes:  make([]dto.VariantOutcome, 0, len(variants)),
		Snapshots: make([]dto.ProductSnapshot, 0, len(variants)),
	}

	for i := range variants {
		v := &variants[i]

		cfg, err := s.configs.FindByVariantID(ctx, v.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			resp.Outcomes = append(resp.Outcomes, dto.VariantOutcome{VariantID: v.ID.String(), Error: err.Error()})
			continue
		}
		resp.Snapshots = append(resp.Snapshots, snapshotOf(v, cfg))

		if enable {
			_, err = s.Enable(ctx, v.ID)
		} else {
			_, err = s.Disable(ctx, v.ID)
		}
		if err != nil {
			log.Warn().
				Str("variant_id", v.ID.String()).
				Bool("enable", enable).
				Err(err).
				Msg("batch toggle: variant failed")
			resp.Outcomes = append(resp.Outcomes, dto.VariantOutcome{VariantID: v.ID.String(), Error: err.Error()})
			continue
		}
		resp.Outcomes = append(resp.Outcomes, dto.VariantOutcome{VariantID: v.ID.String(), OK: true})
	}
	return resp
}

// ── Undo ──────────────────────────────────────────────────────────────────────
// Undo is a compensating forward mutation, not a rollback: the external API
// was already called during the batch, so each snapshot is replayed as a
// fresh price push + state restore.

func (s *toggleService) Undo(ctx context.Context, req dto.UndoRequest) (*dto.UndoResponse, error) {
	resp := &dto.UndoResponse{Outcomes: make([]dto.VariantOutcome, 0, len(req.Snapshots))}

	for _, snap := range req.Snapshots {
		outcome := dto.VariantOutcome{VariantID: snap.VariantID}
		if err := s.undoOne(ctx, snap); err != nil {
			outcome.Error = err.Error()
		} else {
			outcome.OK = true
		}
		resp.Outcomes = append(resp.Outcomes, outcome)
	}
	return resp, nil
}

func (s *toggleService) undoOne(ctx context.Context, snap dto.ProductSnapshot) error {
	variantID, err := uuid.Parse(snap.VariantID)
	if err != nil {
		return &ValidationError{Msg: "invalid variant id in snapshot"}
	}
	// Reject malformed snapshots before anything is pushed externally.
	nextEligibleAt, err := parseTimePtr(snap.NextEligibleAt)
	if err != nil {
		return &ValidationError{Msg: "invalid next_eligible_at timestamp in snapshot"}
	}
	revertWaitUntil, err := parseTimePtr(snap.RevertWaitUntil)
	if err != nil {
		return &ValidationError{Msg: "invalid revert_wait_until timestamp in snapshot"}
	}
	variant, err := s.variants.FindByID(ctx, variantID)
	if err != nil {
		return err
	}
	cfg, err := s.configs.FindByVariantID(ctx, variantID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrConfigNotFound
	} else if err != nil {
		return err
	}

	now := time.Now()
	oldPrice := variant.CurrentPrice

	if err := s.pusher.PushPrice(ctx, variant.StoreID, variant.ExternalVariantID, snap.Price); err != nil {
		return &ExternalAPIError{Err: err}
	}
	if err := s.variants.UpdatePrice(ctx, variant.ID, snap.Price); err != nil {
		return &PersistenceError{Op: "variant mirror", Err: err}
	}
	variant.CurrentPrice = snap.Price

	cfg.AutoPricingEnabled = snap.Enabled
	cfg.State = model.PricingState(snap.State)
	cfg.NextEligibleAt = nextEligibleAt
	cfg.RevertWaitUntil = revertWaitUntil
	cfg.LastPriceChangeAt = &now

	if err := s.configs.UpdateVersioned(ctx, cfg); err != nil {
		return &PersistenceError{Op: "pricing config", Err: err}
	}
	return s.appendToggleHistory(ctx, variant, oldPrice, snap.Price, model.ActionManualReset, "undo batch toggle")
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *toggleService) appendToggleHistory(ctx context.Context, v *model.Variant, oldPrice, newPrice decimal.Decimal, action model.PricingAction, reason string) error {
	entry := &model.PricingHistoryEntry{
		VariantID: v.ID,
		ProductID: v.ProductID,
		StoreID:   v.StoreID,
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
		Action:    action,
		Reason:    reason,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return &PersistenceError{Op: "pricing history", Err: err}
	}
	return nil
}

func defaultConfig(variantID uuid.UUID) *model.VariantPricingConfig {
	return &model.VariantPricingConfig{
		VariantID:                   variantID,
		State:                       model.StateIncreasing,
		IncrementPercent:            decimal.NewFromInt(5),
		PeriodHours:                 24,
		RevenueDropThresholdPercent: decimal.NewFromInt(10),
		WaitHoursAfterRevert:        48,
		MaxIncreasePercent:          decimal.NewFromInt(25),
	}
}

func snapshotOf(v *model.Variant, cfg *model.VariantPricingConfig) dto.ProductSnapshot {
	snap := dto.ProductSnapshot{
		VariantID: v.ID.String(),
		Price:     v.CurrentPrice,
		State:     string(model.StateIncreasing),
	}
	if cfg != nil {
		snap.Enabled = cfg.AutoPricingEnabled
		snap.State = string(cfg.State)
		snap.NextEligibleAt = fmtTimePtr(cfg.NextEligibleAt)
		snap.RevertWaitUntil = fmtTimePtr(cfg.RevertWaitUntil)
	}
	return snap
}

func configToResponse(cfg *model.VariantPricingConfig, v *model.Variant) *dto.PricingConfigResponse {
	return &dto.PricingConfigResponse{
		VariantID:                   cfg.VariantID.String(),
		AutoPricingEnabled:          cfg.AutoPricingEnabled,
		State:                       string(cfg.State),
		IncrementPercent:            cfg.IncrementPercent,
		PeriodHours:                 cfg.PeriodHours,
		RevenueDropThresholdPercent: cfg.RevenueDropThresholdPercent,
		WaitHoursAfterRevert:        cfg.WaitHoursAfterRevert,
		MaxIncreasePercent:          cfg.MaxIncreasePercent,
		BaselinePrice:               cfg.BaselinePrice,
		LastSmartPrice:              cfg.LastSmartPrice,
		CurrentPrice:                v.CurrentPrice,
		LastPriceChangeAt:           fmtTimePtr(cfg.LastPriceChangeAt),
		NextEligibleAt:              fmtTimePtr(cfg.NextEligibleAt),
		RevertWaitUntil:             fmtTimePtr(cfg.RevertWaitUntil),
	}
}

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
