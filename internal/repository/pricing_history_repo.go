package repository

import (
	"context"
	"errors"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PricingHistoryRepository defines the data access contract for the
// append-only price mutation log.
type PricingHistoryRepository interface {
	Append(ctx context.Context, entry *model.PricingHistoryEntry) error
	// LastIncrease returns the most recent "increase" entry for a variant —
	// its OldPrice is the revert target. ErrNotFound when no increase has
	// ever been recorded.
	LastIncrease(ctx context.Context, variantID uuid.UUID) (*model.PricingHistoryEntry, error)
	ListByVariant(ctx context.Context, variantID uuid.UUID, page, limit int) ([]model.PricingHistoryEntry, int64, error)
}

type pricingHistoryRepo struct{ db *gorm.DB }

func NewPricingHistoryRepository(db *gorm.DB) PricingHistoryRepository {
	return &pricingHistoryRepo{db: db}
}

func (r *pricingHistoryRepo) Append(ctx context.Context, entry *model.PricingHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *pricingHistoryRepo) LastIncrease(ctx context.Context, variantID uuid.UUID) (*model.PricingHistoryEntry, error) {
	var entry model.PricingHistoryEntry
	err := r.db.WithContext(ctx).
		Where("variant_id = ? AND action = ?", variantID, model.ActionIncrease).
		Order("created_at DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &entry, err
}

func (r *pricingHistoryRepo) ListByVariant(ctx context.Context, variantID uuid.UUID, page, limit int) ([]model.PricingHistoryEntry, int64, error) {
	var entries []model.PricingHistoryEntry
	var total int64

	q := r.db.WithContext(ctx).Model(&model.PricingHistoryEntry{}).Where("variant_id = ?", variantID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, total, err
}
