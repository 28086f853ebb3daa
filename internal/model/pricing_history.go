package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingAction labels the mutation that produced a history entry.
type PricingAction string

const (
	ActionIncrease    PricingAction = "increase"
	ActionRevert      PricingAction = "revert"
	ActionResumeBase  PricingAction = "resume_base"
	ActionResumeLast  PricingAction = "resume_last"
	ActionManualReset PricingAction = "manual_reset"
)

// PricingHistoryEntry records one price mutation. Entries are append-only and
// immutable; the most recent "increase" entry's OldPrice is the authoritative
// revert target for a variant.
type PricingHistoryEntry struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VariantID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	StoreID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	OldPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	NewPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Action    PricingAction   `gorm:"not null"`
	Reason    string          `gorm:"not null"`

	// Revenue snapshot the decision was computed from (zero for mutations that
	// did not consult revenue, e.g. toggles and webhook resets).
	RevenuePreviousPeriod decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	RevenueCurrentPeriod  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	RevenueChangePercent  decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0"`

	CreatedAt time.Time
}
