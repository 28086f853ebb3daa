package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingState is the closed set of per-variant smart-pricing states.
type PricingState string

const (
	// StateIncreasing: normal operation, eligible for periodic increases.
	StateIncreasing PricingState = "increasing"
	// StateWaitingAfterRevert: cooling down after an automated revert.
	// RevertWaitUntil is set if and only if the config is in this state.
	StateWaitingAfterRevert PricingState = "waiting_after_revert"
	// StateAtMaxCap: price clamped at the ceiling; terminal until an operator
	// raises MaxIncreasePercent.
	StateAtMaxCap PricingState = "at_max_cap"
)

// VariantPricingConfig holds the smart-pricing parameters and state machine
// for one variant. Version is the optimistic-concurrency guard: the periodic
// run, the webhook reset, and operator toggles all write to the same row, so
// every writer goes through a compare-and-swap update
// (repository.UpdateVersioned) and abandons on conflict.
type VariantPricingConfig struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VariantID          uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null"`
	AutoPricingEnabled bool         `gorm:"not null;default:false"`
	State              PricingState `gorm:"not null;default:'increasing'"`

	IncrementPercent            decimal.Decimal `gorm:"type:decimal(5,2);not null;default:5"`
	PeriodHours                 int             `gorm:"not null;default:24"`
	RevenueDropThresholdPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:10"`
	WaitHoursAfterRevert        int             `gorm:"not null;default:48"`
	MaxIncreasePercent          decimal.Decimal `gorm:"type:decimal(5,2);not null;default:25"`

	// BaselinePrice is captured once at first activation and never overwritten
	// by automated logic.
	BaselinePrice *decimal.Decimal `gorm:"type:decimal(10,2)"`
	// LastSmartPrice is the price at the moment of the last increase or
	// disable, the restore target for "resume last".
	LastSmartPrice *decimal.Decimal `gorm:"type:decimal(10,2)"`

	LastPriceChangeAt *time.Time
	NextEligibleAt    *time.Time
	RevertWaitUntil   *time.Time

	Version   int64 `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Variant Variant `gorm:"foreignKey:VariantID"`
}
