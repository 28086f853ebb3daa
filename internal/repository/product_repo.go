package repository

import (
	"context"
	"errors"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for mirrored products.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// FindByExternalID resolves a webhook's external product id within a store.
	FindByExternalID(ctx context.Context, storeID uuid.UUID, externalID string) (*model.Product, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *productRepo) FindByExternalID(ctx context.Context, storeID uuid.UUID, externalID string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND external_product_id = ?", storeID, externalID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &p, err
}
