package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// UpdatePricingRequest covers the three permitted mutation shapes of the
// config API: plain parameter edits, an enable/disable toggle, or a resume
// with an explicit choice. The service rejects mixed shapes.
type UpdatePricingRequest struct {
	IncrementPercent            *decimal.Decimal `json:"increment_percent"              validate:"omitempty"`
	PeriodHours                 *int             `json:"period_hours"                   validate:"omitempty,min=1"`
	RevenueDropThresholdPercent *decimal.Decimal `json:"revenue_drop_threshold_percent" validate:"omitempty"`
	WaitHoursAfterRevert        *int             `json:"wait_hours_after_revert"        validate:"omitempty,min=0"`
	MaxIncreasePercent          *decimal.Decimal `json:"max_increase_percent"           validate:"omitempty"`

	AutoPricingEnabled *bool   `json:"auto_pricing_enabled"`
	ResumeOption       *string `json:"resume_option" validate:"omitempty,oneof=base last"`
}

type UpsertRevenueRequest struct {
	VariantID string          `json:"variant_id" validate:"required,uuid"`
	Day       string          `json:"day"        validate:"required,datetime=2006-01-02"`
	Amount    decimal.Decimal `json:"amount"     validate:"required"`
}

type TriggerRunRequest struct {
	StoreID string `json:"store_id" validate:"required,uuid"`
}

// UndoRequest replays snapshots captured by a batch toggle.
type UndoRequest struct {
	Snapshots []ProductSnapshot `json:"snapshots" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PricingConfigResponse struct {
	VariantID                   string           `json:"variant_id"`
	AutoPricingEnabled          bool             `json:"auto_pricing_enabled"`
	State                       string           `json:"state"`
	IncrementPercent            decimal.Decimal  `json:"increment_percent"`
	PeriodHours                 int              `json:"period_hours"`
	RevenueDropThresholdPercent decimal.Decimal  `json:"revenue_drop_threshold_percent"`
	WaitHoursAfterRevert        int              `json:"wait_hours_after_revert"`
	MaxIncreasePercent          decimal.Decimal  `json:"max_increase_percent"`
	BaselinePrice               *decimal.Decimal `json:"baseline_price,omitempty"`
	LastSmartPrice              *decimal.Decimal `json:"last_smart_price,omitempty"`
	CurrentPrice                decimal.Decimal  `json:"current_price"`
	LastPriceChangeAt           *string          `json:"last_price_change_at,omitempty"`
	NextEligibleAt              *string          `json:"next_eligible_at,omitempty"`
	RevertWaitUntil             *string          `json:"revert_wait_until,omitempty"`
}

// ProductSnapshot captures a variant's pre-mutation state during a batch
// toggle. It is never persisted — it is handed back to the caller so a later
// undo can replay it as a forward mutation.
type ProductSnapshot struct {
	VariantID       string          `json:"variant_id" validate:"required,uuid"`
	Price           decimal.Decimal `json:"price"      validate:"required"`
	Enabled         bool            `json:"enabled"`
	State           string          `json:"state"      validate:"required,oneof=increasing waiting_after_revert at_max_cap"`
	NextEligibleAt  *string         `json:"next_eligible_at,omitempty"`
	RevertWaitUntil *string         `json:"revert_wait_until,omitempty"`
}

// VariantOutcome is the per-item result of a batch operation.
type VariantOutcome struct {
	VariantID string `json:"variant_id"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

type BatchToggleResponse struct {
	Outcomes  []VariantOutcome  `json:"outcomes"`
	Snapshots []ProductSnapshot `json:"snapshots"`
}

type UndoResponse struct {
	Outcomes []VariantOutcome `json:"outcomes"`
}

type HistoryItem struct {
	ID                    string          `json:"id"`
	VariantID             string          `json:"variant_id"`
	OldPrice              decimal.Decimal `json:"old_price"`
	NewPrice              decimal.Decimal `json:"new_price"`
	Action                string          `json:"action"`
	Reason                string          `json:"reason"`
	RevenuePreviousPeriod decimal.Decimal `json:"revenue_previous_period"`
	RevenueCurrentPeriod  decimal.Decimal `json:"revenue_current_period"`
	RevenueChangePercent  decimal.Decimal `json:"revenue_change_percent"`
	CreatedAt             string          `json:"created_at"`
}

type HistoryListResponse struct {
	Data  []HistoryItem `json:"data"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type RunRecordItem struct {
	ID        string   `json:"id"`
	StoreID   string   `json:"store_id"`
	Processed int      `json:"processed"`
	Increased int      `json:"increased"`
	Reverted  int      `json:"reverted"`
	Waiting   int      `json:"waiting"`
	Errors    []string `json:"errors"`
	CreatedAt string   `json:"created_at"`
}

type RunListResponse struct {
	Data  []RunRecordItem `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
