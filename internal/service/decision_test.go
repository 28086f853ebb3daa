package service_test

import (
	"testing"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decideInputs(current, starting float64) (*model.VariantPricingConfig, *model.Variant) {
	cfg := &model.VariantPricingConfig{
		IncrementPercent:            decimal.NewFromInt(5),
		PeriodHours:                 24,
		RevenueDropThresholdPercent: decimal.NewFromInt(10),
		WaitHoursAfterRevert:        48,
		MaxIncreasePercent:          decimal.NewFromInt(25),
	}
	v := &model.Variant{
		CurrentPrice:  decimal.NewFromFloat(current),
		StartingPrice: decimal.NewFromFloat(starting),
	}
	return cfg, v
}

func TestDecide_FirstIncreaseWithoutHistory(t *testing.T) {
	cfg, v := decideInputs(10.00, 10.00)
	rev := &service.RevenueComparison{HasSufficientData: false}

	dec, err := service.Decide(cfg, v, rev)
	require.NoError(t, err)

	assert.Equal(t, service.DecideIncrease, dec.Action)
	assert.Equal(t, "10.50", dec.TargetPrice.StringFixed(2))
	assert.Equal(t, "first increase", dec.Reason)
	assert.False(t, dec.AtCap)
}

func TestDecide_RevenueGrowthIncreases(t *testing.T) {
	cfg, v := decideInputs(10.50, 10.00)
	rev := &service.RevenueComparison{
		HasSufficientData: true,
		ChangePercent:     decimal.NewFromFloat(7.5),
	}

	dec, err := service.Decide(cfg, v, rev)
	require.NoError(t, err)

	assert.Equal(t, service.DecideIncrease, dec.Action)
	assert.Equal(t, "11.03", dec.TargetPrice.StringFixed(2)) // 10.50 * 1.05 rounded
}

func TestDecide_DropBeyondThresholdReverts(t *testing.T) {
	cfg, v := decideInputs(11.00, 10.00)
	rev := &service.RevenueComparison{
		HasSufficientData: true,
		ChangePercent:     decimal.NewFromFloat(-10.1),
	}

	dec, err := service.Decide(cfg, v, rev)
	require.NoError(t, err)

	assert.Equal(t, service.DecideRevert, dec.Action)
	assert.Contains(t, dec.Reason, "revenue dropped")
}

func TestDecide_DropExactlyAtThresholdIsNotADrop(t *testing.T) {
	cfg, v := decideInputs(11.00, 10.00)
	rev := &service.RevenueComparison{
		HasSufficientData: true,
		ChangePercent:     decimal.NewFromInt(-10),
	}

	dec, err := service.Decide(cfg, v, rev)
	require.NoError(t, err)

	// Strictly-below semantics: -10% against a 10% threshold still increases.
	assert.Equal(t, service.DecideIncrease, dec.Action)
}

func TestDecide_ClampsAtMaxCap(t *testing.T) {
	// 12.20 * 1.05 = 12.81 → 28.1% above the 10.00 start, over the 25% cap.
	cfg, v := decideInputs(12.20, 10.00)
	rev := &service.RevenueComparison{HasSufficientData: true, ChangePercent: decimal.NewFromInt(3)}

	dec, err := service.Decide(cfg, v, rev)
	require.NoError(t, err)

	assert.Equal(t, service.DecideIncrease, dec.Action)
	assert.True(t, dec.AtCap)
	assert.Equal(t, "12.50", dec.TargetPrice.StringFixed(2))
	assert.Contains(t, dec.Reason, "clamped at max increase cap")
}

func TestDecide_CapMeasuredAgainstStartingPrice(t *testing.T) {
	// Current price far above start (e.g. after a manual edit): even a small
	// increment lands past the ceiling and is clamped back to it.
	cfg, v := decideInputs(20.00, 10.00)
	rev := &service.RevenueComparison{HasSufficientData: true, ChangePercent: decimal.NewFromInt(1)}

	dec, err := service.Decide(cfg, v, rev)
	require.NoError(t, err)

	assert.True(t, dec.AtCap)
	assert.Equal(t, "12.50", dec.TargetPrice.StringFixed(2))
}

func TestDecide_ZeroStartingPriceRejected(t *testing.T) {
	cfg, v := decideInputs(10.00, 0.00)
	rev := &service.RevenueComparison{HasSufficientData: false}

	_, err := service.Decide(cfg, v, rev)

	var valErr *service.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Error(), "starting price")
}
