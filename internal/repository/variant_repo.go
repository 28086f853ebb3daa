package repository

import (
	"context"
	"errors"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VariantRepository defines the data access contract for the local variant
// price mirror.
type VariantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Variant, error)
	ListByProductID(ctx context.Context, productID uuid.UUID) ([]model.Variant, error)
	ListByStoreID(ctx context.Context, storeID uuid.UUID) ([]model.Variant, error)
	// UpdatePrice writes the mirrored current price after a successful
	// external push (or after a webhook reports an external edit).
	UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error
}

type variantRepo struct{ db *gorm.DB }

func NewVariantRepository(db *gorm.DB) VariantRepository { return &variantRepo{db: db} }

func (r *variantRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Variant, error) {
	var v model.Variant
	err := r.db.WithContext(ctx).First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &v, err
}

func (r *variantRepo) ListByProductID(ctx context.Context, productID uuid.UUID) ([]model.Variant, error) {
	var variants []model.Variant
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Find(&variants).Error
	return variants, err
}

func (r *variantRepo) ListByStoreID(ctx context.Context, storeID uuid.UUID) ([]model.Variant, error) {
	var variants []model.Variant
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Find(&variants).Error
	return variants, err
}

func (r *variantRepo) UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&model.Variant{}).Where("id = ?", id).
		Update("current_price", price).Error
}
