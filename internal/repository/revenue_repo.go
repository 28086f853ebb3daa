package repository

import (
	"context"
	"time"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevenueRepository reads and writes per-variant daily revenue rows.
type RevenueRepository interface {
	// SumRange totals recorded revenue over [from, to).
	SumRange(ctx context.Context, variantID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
	// Upsert records (or replaces) one day's revenue for a variant.
	Upsert(ctx context.Context, rev *model.DailyRevenue) error
}

type revenueRepo struct{ db *gorm.DB }

func NewRevenueRepository(db *gorm.DB) RevenueRepository { return &revenueRepo{db: db} }

func (r *revenueRepo) SumRange(ctx context.Context, variantID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.DailyRevenue{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("variant_id = ? AND day >= ? AND day < ?", variantID, from, to).
		Scan(&total).Error
	return total, err
}

func (r *revenueRepo) Upsert(ctx context.Context, rev *model.DailyRevenue) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "variant_id"}, {Name: "day"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).
		Create(rev).Error
}
