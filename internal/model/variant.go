package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant is the local price mirror of one product variant on the commerce
// platform. StartingPrice is the immutable reference for max-cap math;
// CurrentPrice tracks the price last pushed to (or reported by) the platform.
type Variant struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null;index"`
	StoreID           uuid.UUID `gorm:"type:uuid;not null;index"`
	ExternalVariantID string    `gorm:"index;not null"`
	Title             string
	CurrentPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StartingPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
