package repository

import (
	"context"
	"errors"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreRepository defines the data access contract for connected stores.
type StoreRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error)
	FindByDomain(ctx context.Context, domain string) (*model.Store, error)
	ListActive(ctx context.Context) ([]model.Store, error)
}

type storeRepo struct{ db *gorm.DB }

func NewStoreRepository(db *gorm.DB) StoreRepository { return &storeRepo{db: db} }

func (r *storeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *storeRepo) FindByDomain(ctx context.Context, domain string) (*model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).Where("shop_domain = ?", domain).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *storeRepo) ListActive(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).Where("active = true").Find(&stores).Error
	return stores, err
}
