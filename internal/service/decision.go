package service

import (
	"fmt"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"

	"github.com/shopspring/decimal"
)

// DecisionAction is what the pricing engine decided to do with a variant.
type DecisionAction string

const (
	DecideIncrease DecisionAction = "increase"
	DecideRevert   DecisionAction = "revert"
)

// Decision is the outcome of one evaluation cycle for one variant.
// TargetPrice is resolved for increases; revert targets come from the history
// log and are resolved by the mutation executor.
type Decision struct {
	Action      DecisionAction
	Reason      string
	TargetPrice decimal.Decimal
	AtCap       bool
}

// Decide is the pure pricing decision function.
//
// Rules:
//   - No comparable revenue history yet → increase ("first increase"), the
//     intentional one-time bootstrap exemption.
//   - Revenue change strictly below -threshold → revert. A change exactly at
//     the threshold is NOT a drop.
//   - Otherwise → increase.
//
// Increase candidates compound from the current price, but the cap is always
// measured against the immutable starting price, so repeated increases close
// in on a fixed ceiling. Crossing it clamps the candidate exactly once and
// parks the variant at the cap.
func Decide(cfg *model.VariantPricingConfig, variant *model.Variant, rev *RevenueComparison) (Decision, error) {
	// Cap math divides by the starting price; a free or degenerate variant has
	// no meaningful increase ceiling and cannot be evaluated.
	if !variant.StartingPrice.IsPositive() {
		return Decision{}, &ValidationError{Msg: "variant starting price must be positive"}
	}

	if !rev.HasSufficientData {
		return increaseDecision(cfg, variant, "first increase"), nil
	}

	if rev.ChangePercent.LessThan(cfg.RevenueDropThresholdPercent.Neg()) {
		return Decision{
			Action: DecideRevert,
			Reason: fmt.Sprintf("revenue dropped %s%% over the last %dh period", rev.ChangePercent.StringFixed(1), cfg.PeriodHours),
		}, nil
	}

	return increaseDecision(cfg, variant,
		fmt.Sprintf("revenue change %s%% within threshold", rev.ChangePercent.StringFixed(1))), nil
}

func increaseDecision(cfg *model.VariantPricingConfig, variant *model.Variant, reason string) Decision {
	one := decimal.NewFromInt(1)
	candidate := variant.CurrentPrice.Mul(one.Add(cfg.IncrementPercent.Div(hundred))).Round(2)

	percentAboveStart := candidate.Sub(variant.StartingPrice).Div(variant.StartingPrice).Mul(hundred)
	if percentAboveStart.GreaterThan(cfg.MaxIncreasePercent) {
		return Decision{
			Action:      DecideIncrease,
			Reason:      reason + " (clamped at max increase cap)",
			TargetPrice: variant.StartingPrice.Mul(one.Add(cfg.MaxIncreasePercent.Div(hundred))).Round(2),
			AtCap:       true,
		}
	}

	return Decision{
		Action:      DecideIncrease,
		Reason:      reason,
		TargetPrice: candidate,
	}
}
