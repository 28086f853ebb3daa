package service

import (
	"context"
	"errors"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/dto"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/repository"

	"github.com/google/uuid"
)

// ConfigService serves the operator-facing config API. A PATCH carries
// exactly one of three shapes: plain parameter edits, an
// auto_pricing_enabled toggle, or a resume_option — the latter two are
// delegated to the ToggleService.
type ConfigService interface {
	Get(ctx context.Context, variantID uuid.UUID) (*dto.PricingConfigResponse, error)
	Update(ctx context.Context, variantID uuid.UUID, req dto.UpdatePricingRequest) (*dto.PricingConfigResponse, error)
}

type configService struct {
	variants repository.VariantRepository
	configs  repository.PricingConfigRepository
	toggles  ToggleService
}

func NewConfigService(
	variants repository.VariantRepository,
	configs repository.PricingConfigRepository,
	toggles ToggleService,
) ConfigService {
	return &configService{variants: variants, configs: configs, toggles: toggles}
}

func (s *configService) Get(ctx context.Context, variantID uuid.UUID) (*dto.PricingConfigResponse, error) {
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
	return configToResponse(cfg, variant), nil
}

func (s *configService) Update(ctx context.Context, variantID uuid.UUID, req dto.UpdatePricingRequest) (*dto.PricingConfigResponse, error) {
	if req.ResumeOption != nil {
		return s.toggles.Resume(ctx, variantID, *req.ResumeOption)
	}
	if req.AutoPricingEnabled != nil {
		if *req.AutoPricingEnabled {
			return s.toggles.Enable(ctx, variantID)
		}
		return s.toggles.Disable(ctx, variantID)
	}
	return s.updateParams(ctx, variantID, req)
}

func (s *configService) updateParams(ctx context.Context, variantID uuid.UUID, req dto.UpdatePricingRequest) (*dto.PricingConfigResponse, error) {
	variant, err := s.variants.FindByID(ctx, variantID)
	if err != nil {
		return nil, err
	}

	// Re-read and retry on CAS conflict: a plain parameter edit must never
	// clobber a concurrent run or webhook reset.
	var cfg *model.VariantPricingConfig
	for attempt := 0; attempt < casRetries; attempt++ {
		cfg, err = s.configs.FindByVariantID(ctx, variantID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConfigNotFound
		} else if err != nil {
			return nil, err
		}

		if req.IncrementPercent != nil {
			cfg.IncrementPercent = *req.IncrementPercent
		}
		if req.PeriodHours != nil {
			cfg.PeriodHours = *req.PeriodHours
		}
		if req.RevenueDropThresholdPercent != nil {
			cfg.RevenueDropThresholdPercent = *req.RevenueDropThresholdPercent
		}
		if req.WaitHoursAfterRevert != nil {
			cfg.WaitHoursAfterRevert = *req.WaitHoursAfterRevert
		}
		if req.MaxIncreasePercent != nil {
			// Raising the ceiling releases a capped variant back into the
			// increase cycle.
			if cfg.State == model.StateAtMaxCap && req.MaxIncreasePercent.GreaterThan(cfg.MaxIncreasePercent) {
				cfg.State = model.StateIncreasing
			}
			cfg.MaxIncreasePercent = *req.MaxIncreasePercent
		}

		err = s.configs.UpdateVersioned(ctx, cfg)
		if err == nil {
			return configToResponse(cfg, variant), nil
		}
		if !errors.Is(err, repository.ErrConcurrentModification) {
			return nil, err
		}
	}
	return nil, err
}
