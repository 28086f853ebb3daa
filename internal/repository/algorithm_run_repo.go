package repository

import (
	"context"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlgorithmRunRepository stores one audit record per run coordinator pass.
type AlgorithmRunRepository interface {
	Create(ctx context.Context, rec *model.AlgorithmRunRecord) error
	ListByStore(ctx context.Context, storeID uuid.UUID, page, limit int) ([]model.AlgorithmRunRecord, int64, error)
}

type algorithmRunRepo struct{ db *gorm.DB }

func NewAlgorithmRunRepository(db *gorm.DB) AlgorithmRunRepository {
	return &algorithmRunRepo{db: db}
}

func (r *algorithmRunRepo) Create(ctx context.Context, rec *model.AlgorithmRunRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *algorithmRunRepo) ListByStore(ctx context.Context, storeID uuid.UUID, page, limit int) ([]model.AlgorithmRunRecord, int64, error) {
	var records []model.AlgorithmRunRecord
	var total int64

	q := r.db.WithContext(ctx).Model(&model.AlgorithmRunRecord{}).Where("store_id = ?", storeID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	return records, total, err
}
