package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/dto"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnable_CreatesConfigWithActivationBump(t *testing.T) {
	f := newFixture()
	store := f.seedStore("shop.example.com")
	product := f.seedProduct(store, "1001")
	variant := f.seedVariant(store, product, "v-1", 10.00)

	resp, err := f.toggleSvc.Enable(context.Background(), variant.ID)
	require.NoError(t, err)

	// 2% activation bump on enable.
	assert.True(t, resp.AutoPricingEnabled)
	assert.Equal(t, "10.20", f.variants.price(variant.ID).StringFixed(2))
	assert.Equal(t, string(model.StateIncreasing), resp.State)

	stored := f.configs.stored(variant.ID)
	require.NotNil(t, stored.BaselinePrice)
	assert.Equal(t, "10.00", stored.BaselinePrice.StringFixed(2))

	entries := f.history.byVariant(variant.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActionIncrease, entries[0].Action)
	assert.Contains(t, entries[0].Reason, "enabled")
}

func TestEnable_BaselineCapturedOnlyOnce(t *testing.T) {
	f := newFixture()
	store := f.seedStore("shop.example.com")
	product := f.seedProduct(store, "1001")
	variant := f.seedVariant(store, product, "v-1", 10.00)

	baseline := decimal.NewFromFloat(9.00)
	f.seedConfig(variant.ID, func(c *model.VariantPricingConfig) {
		c.AutoPricingEnabled = false
		c.BaselinePrice = &baseline
	})

	_, err := f.toggleSvc.Enable(context.Background(), variant.ID)
	require.NoError(t, err)

	stored := f.configs.stored(variant.ID)
	assert.Equal(t, "9.00", stored.BaselinePrice.StringFixed(2))
}

func TestEnable_ActivationBumpClampedAtCap(t *testing.T) {
	f := newFixture()
	store := f.seedStore("shop.example.com")
	product := f.seedProduct(store, "1001")
	variant := f.seedVariant(store, product, "v-1", 10.00)
	// Current price already at the 25% ceiling.
	f.variants.variants[variant.ID].CurrentPrice = decimal.NewFromFloat(12.45)

	resp, err := f.toggleSvc.Enable(context.Background(), variant.ID)
	require.NoError(t, err)

	assert.Equal(t, "12.50", f.variants.price(variant.ID).StringFixed(2))
	assert.Equal(t, string(model.StateAtMaxCap), resp.State)
}

func TestEnable_AlreadyEnabledIsNoOp(t *testing.T) {
	f := newFixture()
	store := f.seedStore("shop.example.com")
	product := f.seedProduct(store, "1001")
	variant := f.seedVariant(store, product, "v-1", 10.00)

	_, err := f.toggleSvc.Enable(context.Background(), variant.ID)
	require.NoError(t, err)
	require.Equal(t, "10.20", f.variants.price(variant.ID).StringFixed(2))

	// A repeated enable must not ratchet the price with another bump.
	resp, err := f.toggleSvc.Enable(context.Background(), variant.ID)
	require.NoError(t, err)

	assert.True(t, resp.AutoPricingEnabled)
	assert.Equal(t, "10.20", f.variants.price(variant.ID).StringFixed(2))
	assert.Equal(t, 1, f.pusher.pushCount())
	assert.Len(t, f.history.byVariant(variant.ID), 1)
}

func TestDisable_RestoresBaselineAndRemembersLastSmartPrice(t *testing.T) {
	f := newFixture()
	store := f.seedStore("shop.example.com")
	product := f.seedProduct(store, "1001")
	variant := f.seedVariant(store, product, "v-1", 10.00)

	_, err := f.toggleSvc.Enable(context.Background(), variant.ID)
	require.NoError(t, err)

	// Simulate a few cycles having pushed the price up.
	f.variants.variants[variant.ID].CurrentPrice = decimal.NewFromFloat(11.55)

	resp, err := f.toggleSvc.Disable(context.Background(), variant.ID)
	require.NoError(t, err)

	assert.False(t, resp.AutoPricingEnabled)
	assert.Equal(t, "10.00", f.variants.price(variant.ID).StringFixed(2))

	stored := f.configs.stored(variant.ID)
	require.NotNil(t, stored.LastSmartPrice)
	assert.Equal(t, "11.55", stored.LastSmartPrice.StringFixed(2))
	assert.Nil(t, stored.NextEligibleAt)
	assert.Nil(t, stored.RevertWaitUntil)
}

func TestDisable_WithoutConfigFails(t *testing.T) {
	f := newFixture()
	store := f.seedStore("shop.example.com")
	product := f.seedProduct(store, "1001")
	variant := f.seedVariant(store, product, "v-1", 10.00)

	_, err := f.toggleSvc.Disable(context.Background(), variant.ID)
	assert.ErrorIs(t, err, service.ErrConfigNotFound)
}

func TestDisable_BeforeAnyCycleFallsBackToStartingPrice(t *testing.T) {
	f := newFixture()
	store := f.seedStore("shop.example.com")
	product := f.seedProduct(store, "1001")
	variant := f.seedVariant(store, product, "v-1", 10.00)
	f.variants.variants[variant.ID].CurrentPrice = decimal.NewFromFloat(13.00)

	// Config exists but baseline was never captured.
	f.seedConfig(variant.ID, func(c *model.VariantPricingConfig) {
		c.BaselinePrice = nil
	})

	_, err := f.toggleSvc.Disable(context.Background(), variant.ID)
	require.NoError(t, err)

	assert.Equal(t, "10.00", f.variants.price(variant.ID).StringFixed(2))
}

func TestResume_BaseAndLast(t *testing.T) {
	f := newFixture()
	store := f.seedStore("shop.example.com")
	product := f.seedProduct(store, "1001")
	variant := f.seedVariant(store, product, "v-1", 10.00)

	baseline := decimal.NewFromFloat(10.00)
	lastSmart := decimal.NewFromFloat(11.55)
	f.seedConfig(variant.ID, func(c *model.VariantPricingConfig) {
		c.AutoPricingEnabled = false
		c.BaselinePrice = &baseline
		c.LastSmartPrice = &lastSmart
	})

	resp, err := f.toggleSvc.Resume(context.Background(), variant.ID, service.ResumeOptionLast)
	require.NoError(t, err)
	assert.True(t, resp.AutoPricingEnabled)
	assert.Equal(t, "11.55", f.variants.price(variant.ID).StringFixed(2))

	entries := f.history.byVariant(variant.ID)
	require.NotEmpty(t, entries)
	assert.Equal(t, model.ActionResumeLast, entries[len(entries)-1].Action)

	_, err = f.toggleSvc.Resume(context.Background(), variant.ID, service.ResumeOptionBase)
	require.NoError(t, err)
	assert.Equal(t, "10.00", f.variants.price(variant.ID).StringFixed(2))
}

func TestResume_InvalidOptionRejected(t *testing.T) {
	f := newFixture()
	store := f.seedStore("shop.example.com")
	product := f.seedProduct(store, "1001")
	variant := f.seedVariant(store, product, "v-1", 10.00)
	f.seedConfig(variant.ID, nil)

	_, err := f.toggleSvc.Resume(context.Background(), variant.ID, "median")

	var valErr *service.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestToggleProduct_IsolatesPerVariantFailures(t *testing.T) {
	f := newFixture()
	store := f.seedStore("shop.example.com")
	product := f.seedProduct(store, "1001")
	good := f.seedVariant(store, product, "v-good", 10.00)
	bad := f.seedVariant(store, product, "v-bad", 20.00)
	f.pusher.failFor["v-bad"] = errors.New("upstream 500")

	resp, err := f.toggleSvc.ToggleProduct(context.Background(), product.ID, true)
	require.NoError(t, err)

	require.Len(t, resp.Outcomes, 2)
	require.Len(t, resp.Snapshots, 2)

	byID := map[string]dto.VariantOutcome{}
	for _, o := range resp.Outcomes {
		byID[o.VariantID] = o
	}
	assert.True(t, byID[good.ID.String()].OK)
	assert.False(t, byID[bad.ID.String()].OK)
	assert.NotEmpty(t, byID[bad.ID.String()].Error)

	// The failed sibling kept its price.
	assert.Equal(t, "10.20", f.variants.price(good.ID).StringFixed(2))
	assert.Equal(t, "20.00", f.variants.price(bad.ID).StringFixed(2))
}

func TestUndo_ReplaysSnapshots(t *testing.T) {
	f := newFixture()
	store := f.seedStore("shop.example.com")
	product := f.seedProduct(store, "1001")
	variant := f.seedVariant(store, product, "v-1", 10.00)

	toggled, err := f.toggleSvc.ToggleProduct(context.Background(), product.ID, true)
	require.NoError(t, err)
	require.Len(t, toggled.Snapshots, 1)
	assert.Equal(t, "10.20", f.variants.price(variant.ID).StringFixed(2))

	undone, err := f.toggleSvc.Undo(context.Background(), dto.UndoRequest{Snapshots: toggled.Snapshots})
	require.NoError(t, err)
	require.Len(t, undone.Outcomes, 1)
	assert.True(t, undone.Outcomes[0].OK)

	// Price and state restored to the pre-toggle snapshot.
	assert.Equal(t, "10.00", f.variants.price(variant.ID).StringFixed(2))
	stored := f.configs.stored(variant.ID)
	assert.False(t, stored.AutoPricingEnabled)
	assert.Equal(t, model.StateIncreasing, stored.State)

	entries := f.history.byVariant(variant.ID)
	require.NotEmpty(t, entries)
	assert.Equal(t, model.ActionManualReset, entries[len(entries)-1].Action)
}

func TestUndo_MalformedSnapshotTimestampRejected(t *testing.T) {
	f := newFixture()
	store := f.seedStore("shop.example.com")
	product := f.seedProduct(store, "1001")
	variant := f.seedVariant(store, product, "v-1", 10.00)
	f.seedConfig(variant.ID, nil)

	badTime := "yesterday at noon"
	undone, err := f.toggleSvc.Undo(context.Background(), dto.UndoRequest{Snapshots: []dto.ProductSnapshot{{
		VariantID:      variant.ID.String(),
		Price:          decimal.NewFromFloat(9.50),
		State:          string(model.StateIncreasing),
		NextEligibleAt: &badTime,
	}}})
	require.NoError(t, err)

	require.Len(t, undone.Outcomes, 1)
	assert.False(t, undone.Outcomes[0].OK)
	assert.Contains(t, undone.Outcomes[0].Error, "next_eligible_at")

	// Rejected before the push: no external call, no local mutation.
	assert.Equal(t, 0, f.pusher.pushCount())
	assert.Equal(t, "10.00", f.variants.price(variant.ID).StringFixed(2))
}
