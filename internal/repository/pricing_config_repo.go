package repository

import (
	"context"
	"errors"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PricingConfigRepository defines the data access contract for per-variant
// smart-pricing configs. All mutations go through UpdateVersioned — the
// periodic run, webhook resets, and operator toggles are concurrent writers
// of the same rows and must never clobber each other.
type PricingConfigRepository interface {
	Create(ctx context.Context, cfg *model.VariantPricingConfig) error
	FindByVariantID(ctx context.Context, variantID uuid.UUID) (*model.VariantPricingConfig, error)
	ListByProductID(ctx context.Context, productID uuid.UUID) ([]model.VariantPricingConfig, error)
	ListEnabledByStore(ctx context.Context, storeID uuid.UUID) ([]model.VariantPricingConfig, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]model.VariantPricingConfig, error)
	// UpdateVersioned performs a compare-and-swap on the Version column.
	// Returns ErrConcurrentModification when the row moved underneath the
	// caller; on success cfg.Version is bumped to the stored value.
	UpdateVersioned(ctx context.Context, cfg *model.VariantPricingConfig) error
}

type pricingConfigRepo struct{ db *gorm.DB }

func NewPricingConfigRepository(db *gorm.DB) PricingConfigRepository {
	return &pricingConfigRepo{db: db}
}

func (r *pricingConfigRepo) Create(ctx context.Context, cfg *model.VariantPricingConfig) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

func (r *pricingConfigRepo) FindByVariantID(ctx context.Context, variantID uuid.UUID) (*model.VariantPricingConfig, error) {
	var cfg model.VariantPricingConfig
	err := r.db.WithContext(ctx).Where("variant_id = ?", variantID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &cfg, err
}

func (r *pricingConfigRepo) ListByProductID(ctx context.Context, productID uuid.UUID) ([]model.VariantPricingConfig, error) {
	var configs []model.VariantPricingConfig
	err := r.db.WithContext(ctx).
		Preload("Variant").
		Joins("JOIN variants ON variants.id = variant_pricing_configs.variant_id").
		Where("variants.product_id = ?", productID).
		Find(&configs).Error
	return configs, err
}

func (r *pricingConfigRepo) ListEnabledByStore(ctx context.Context, storeID uuid.UUID) ([]model.VariantPricingConfig, error) {
	var configs []model.VariantPricingConfig
	err := r.db.WithContext(ctx).
		Preload("Variant").
		Joins("JOIN variants ON variants.id = variant_pricing_configs.variant_id").
		Where("variant_pricing_configs.auto_pricing_enabled = true AND variants.store_id = ?", storeID).
		Find(&configs).Error
	return configs, err
}

func (r *pricingConfigRepo) ListByStore(ctx context.Context, storeID uuid.UUID) ([]model.VariantPricingConfig, error) {
	var configs []model.VariantPricingConfig
	err := r.db.WithContext(ctx).
		Preload("Variant").
		Joins("JOIN variants ON variants.id = variant_pricing_configs.variant_id").
		Where("variants.store_id = ?", storeID).
		Find(&configs).Error
	return configs, err
}

func (r *pricingConfigRepo) UpdateVersioned(ctx context.Context, cfg *model.VariantPricingConfig) error {
	current := cfg.Version

	// Map form so NULLs (cleared schedule fields) and false booleans are
	// written — a struct update would silently skip zero values.
	updates := map[string]interface{}{
		"auto_pricing_enabled":           cfg.AutoPricingEnabled,
		"state":                          cfg.State,
		"increment_percent":              cfg.IncrementPercent,
		"period_hours":                   cfg.PeriodHours,
		"revenue_drop_threshold_percent": cfg.RevenueDropThresholdPercent,
		"wait_hours_after_revert":        cfg.WaitHoursAfterRevert,
		"max_increase_percent":           cfg.MaxIncreasePercent,
		"baseline_price":                 cfg.BaselinePrice,
		"last_smart_price":               cfg.LastSmartPrice,
		"last_price_change_at":           cfg.LastPriceChangeAt,
		"next_eligible_at":               cfg.NextEligibleAt,
		"revert_wait_until":              cfg.RevertWaitUntil,
		"version":                        current + 1,
	}

	res := r.db.WithContext(ctx).Model(&model.VariantPricingConfig{}).
		Where("id = ? AND version = ?", cfg.ID, current).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentModification
	}
	cfg.Version = current + 1
	return nil
}
