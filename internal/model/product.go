package model

import (
	"time"

	"github.com/google/uuid"
)

// Product maps the platform's external product id to the locally mirrored
// variants. Webhook events are keyed by ExternalProductID.
type Product struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID           uuid.UUID `gorm:"type:uuid;not null;index"`
	ExternalProductID string    `gorm:"index;not null"`
	Title             string    `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Variants []Variant `gorm:"foreignKey:ProductID"`
}
