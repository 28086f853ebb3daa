package repository

import (
	"context"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProcessedEventRepository is the webhook idempotency ledger.
type ProcessedEventRepository interface {
	// Insert appends a ledger row. Returns ErrDuplicateEvent when the
	// (event_id, store_id) pair was already recorded — the database's unique
	// index is the arbiter, so two concurrent deliveries cannot both win.
	Insert(ctx context.Context, rec *model.ProcessedEventRecord) error
}

type processedEventRepo struct{ db *gorm.DB }

func NewProcessedEventRepository(db *gorm.DB) ProcessedEventRepository {
	return &processedEventRepo{db: db}
}

func (r *processedEventRepo) Insert(ctx context.Context, rec *model.ProcessedEventRecord) error {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "store_id"}},
			DoNothing: true,
		}).
		Create(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDuplicateEvent
	}
	return nil
}
