package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyRevenue is one day's recorded sales revenue for a variant, fed by the
// platform's order stream. The revenue evaluator sums these rows over the
// comparison windows.
type DailyRevenue struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VariantID uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_variant_day;not null"`
	Day       time.Time       `gorm:"type:date;uniqueIndex:idx_variant_day;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
