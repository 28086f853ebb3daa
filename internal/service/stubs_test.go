package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/repository"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// In-memory repository implementations. Config reads return copies so that
// tests can simulate concurrent writers by bumping the stored version.

type stubStoreRepo struct {
	mu     sync.Mutex
	stores map[uuid.UUID]*model.Store
}

func newStubStoreRepo() *stubStoreRepo {
	return &stubStoreRepo{stores: make(map[uuid.UUID]*model.Store)}
}

func (r *stubStoreRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubStoreRepo) FindByDomain(_ context.Context, domain string) (*model.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stores {
		if s.ShopDomain == domain {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubStoreRepo) ListActive(_ context.Context) ([]model.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Store
	for _, s := range r.stores {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

var _ repository.StoreRepository = (*stubStoreRepo)(nil)

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindByExternalID(_ context.Context, storeID uuid.UUID, externalID string) (*model.Product, error) {
	for _, p := range r.products {
		if p.StoreID == storeID && p.ExternalProductID == externalID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

type stubVariantRepo struct {
	mu       sync.Mutex
	variants map[uuid.UUID]*model.Variant

	failUpdate error // injected mirror-write failure
}

func newStubVariantRepo() *stubVariantRepo {
	return &stubVariantRepo{variants: make(map[uuid.UUID]*model.Variant)}
}

func (r *stubVariantRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.variants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *stubVariantRepo) ListByProductID(_ context.Context, productID uuid.UUID) ([]model.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Variant
	for _, v := range r.variants {
		if v.ProductID == productID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubVariantRepo) ListByStoreID(_ context.Context, storeID uuid.UUID) ([]model.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Variant
	for _, v := range r.variants {
		if v.StoreID == storeID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubVariantRepo) UpdatePrice(_ context.Context, id uuid.UUID, price decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return r.failUpdate
	}
	v, ok := r.variants[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.CurrentPrice = price
	return nil
}

// price reads the stored current price directly.
func (r *stubVariantRepo) price(id uuid.UUID) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.variants[id].CurrentPrice
}

var _ repository.VariantRepository = (*stubVariantRepo)(nil)

type stubConfigRepo struct {
	mu       sync.Mutex
	configs  map[uuid.UUID]*model.VariantPricingConfig // keyed by VariantID
	variants *stubVariantRepo
}

func newStubConfigRepo(variants *stubVariantRepo) *stubConfigRepo {
	return &stubConfigRepo{
		configs:  make(map[uuid.UUID]*model.VariantPricingConfig),
		variants: variants,
	}
}

func (r *stubConfigRepo) Create(_ context.Context, cfg *model.VariantPricingConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	cp := *cfg
	r.configs[cfg.VariantID] = &cp
	return nil
}

func (r *stubConfigRepo) FindByVariantID(_ context.Context, variantID uuid.UUID) (*model.VariantPricingConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[variantID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *cfg
	return &cp, nil
}

func (r *stubConfigRepo) ListByProductID(_ context.Context, productID uuid.UUID) ([]model.VariantPricingConfig, error) {
	return r.list(func(v *model.Variant, _ *model.VariantPricingConfig) bool {
		return v.ProductID == productID
	})
}

func (r *stubConfigRepo) ListEnabledByStore(_ context.Context, storeID uuid.UUID) ([]model.VariantPricingConfig, error) {
	return r.list(func(v *model.Variant, c *model.VariantPricingConfig) bool {
		return v.StoreID == storeID && c.AutoPricingEnabled
	})
}

func (r *stubConfigRepo) ListByStore(_ context.Context, storeID uuid.UUID) ([]model.VariantPricingConfig, error) {
	return r.list(func(v *model.Variant, _ *model.VariantPricingConfig) bool {
		return v.StoreID == storeID
	})
}

func (r *stubConfigRepo) list(match func(*model.Variant, *model.VariantPricingConfig) bool) ([]model.VariantPricingConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variants.mu.Lock()
	defer r.variants.mu.Unlock()

	var out []model.VariantPricingConfig
	for variantID, cfg := range r.configs {
		v, ok := r.variants.variants[variantID]
		if !ok || !match(v, cfg) {
			continue
		}
		cp := *cfg
		cp.Variant = *v
		out = append(out, cp)
	}
	return out, nil
}

func (r *stubConfigRepo) UpdateVersioned(_ context.Context, cfg *model.VariantPricingConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.configs[cfg.VariantID]
	if !ok || stored.Version != cfg.Version {
		return repository.ErrConcurrentModification
	}
	cp := *cfg
	cp.Version = cfg.Version + 1
	cp.Variant = model.Variant{}
	r.configs[cfg.VariantID] = &cp
	cfg.Version = cp.Version
	return nil
}

// bumpVersion simulates a concurrent writer landing first.
func (r *stubConfigRepo) bumpVersion(variantID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[variantID].Version++
}

func (r *stubConfigRepo) stored(variantID uuid.UUID) *model.VariantPricingConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.configs[variantID]
	return &cp
}

var _ repository.PricingConfigRepository = (*stubConfigRepo)(nil)

type stubHistoryRepo struct {
	mu      sync.Mutex
	entries []model.PricingHistoryEntry
}

func (r *stubHistoryRepo) Append(_ context.Context, entry *model.PricingHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubHistoryRepo) LastIncrease(_ context.Context, variantID uuid.UUID) (*model.PricingHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.VariantID == variantID && e.Action == model.ActionIncrease {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubHistoryRepo) ListByVariant(_ context.Context, variantID uuid.UUID, page, limit int) ([]model.PricingHistoryEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PricingHistoryEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].VariantID == variantID {
			out = append(out, r.entries[i])
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubHistoryRepo) byVariant(variantID uuid.UUID) []model.PricingHistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PricingHistoryEntry
	for _, e := range r.entries {
		if e.VariantID == variantID {
			out = append(out, e)
		}
	}
	return out
}

var _ repository.PricingHistoryRepository = (*stubHistoryRepo)(nil)

type stubRunRepo struct {
	mu      sync.Mutex
	records []model.AlgorithmRunRecord
}

func (r *stubRunRepo) Create(_ context.Context, rec *model.AlgorithmRunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	r.records = append(r.records, *rec)
	return nil
}

func (r *stubRunRepo) ListByStore(_ context.Context, storeID uuid.UUID, _, _ int) ([]model.AlgorithmRunRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AlgorithmRunRecord
	for _, rec := range r.records {
		if rec.StoreID == storeID {
			out = append(out, rec)
		}
	}
	return out, int64(len(out)), nil
}

var _ repository.AlgorithmRunRepository = (*stubRunRepo)(nil)

type stubEventRepo struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newStubEventRepo() *stubEventRepo {
	return &stubEventRepo{seen: make(map[string]bool)}
}

func (r *stubEventRepo) Insert(_ context.Context, rec *model.ProcessedEventRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := rec.EventID + "|" + rec.StoreID.String()
	if r.seen[key] {
		return repository.ErrDuplicateEvent
	}
	r.seen[key] = true
	return nil
}

var _ repository.ProcessedEventRepository = (*stubEventRepo)(nil)

type revenueRow struct {
	at     time.Time
	amount decimal.Decimal
}

type stubRevenueRepo struct {
	rows map[uuid.UUID][]revenueRow
}

func newStubRevenueRepo() *stubRevenueRepo {
	return &stubRevenueRepo{rows: make(map[uuid.UUID][]revenueRow)}
}

func (r *stubRevenueRepo) SumRange(_ context.Context, variantID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, row := range r.rows[variantID] {
		if !row.at.Before(from) && row.at.Before(to) {
			total = total.Add(row.amount)
		}
	}
	return total, nil
}

func (r *stubRevenueRepo) Upsert(_ context.Context, rev *model.DailyRevenue) error {
	r.rows[rev.VariantID] = append(r.rows[rev.VariantID], revenueRow{at: rev.Day, amount: rev.Amount})
	return nil
}

func (r *stubRevenueRepo) add(variantID uuid.UUID, at time.Time, amount float64) {
	r.rows[variantID] = append(r.rows[variantID], revenueRow{at: at, amount: decimal.NewFromFloat(amount)})
}

var _ repository.RevenueRepository = (*stubRevenueRepo)(nil)

// fakePusher records external price pushes and can fail selectively.
type fakePusher struct {
	mu      sync.Mutex
	pushes  []pushCall
	err     error            // fail everything
	failFor map[string]error // fail per external variant id
}

type pushCall struct {
	storeID           uuid.UUID
	externalVariantID string
	price             decimal.Decimal
}

func (p *fakePusher) PushPrice(_ context.Context, storeID uuid.UUID, externalVariantID string, price decimal.Decimal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if err, ok := p.failFor[externalVariantID]; ok {
		return err
	}
	p.pushes = append(p.pushes, pushCall{storeID: storeID, externalVariantID: externalVariantID, price: price})
	return nil
}

func (p *fakePusher) pushCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushes)
}

var _ service.ExternalPricePusher = (*fakePusher)(nil)

// ── Fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	stores   *stubStoreRepo
	products *stubProductRepo
	variants *stubVariantRepo
	configs  *stubConfigRepo
	history  *stubHistoryRepo
	events   *stubEventRepo
	revenue  *stubRevenueRepo
	runs     *stubRunRepo
	pusher   *fakePusher

	revenueSvc  service.RevenueService
	mutationSvc service.MutationService
	toggleSvc   service.ToggleService
	configSvc   service.ConfigService
	webhookSvc  service.WebhookService
	runSvc      service.RunService
}

func newFixture() *fixture {
	f := &fixture{
		stores:   newStubStoreRepo(),
		products: newStubProductRepo(),
		variants: newStubVariantRepo(),
		history:  &stubHistoryRepo{},
		events:   newStubEventRepo(),
		revenue:  newStubRevenueRepo(),
		runs:     &stubRunRepo{},
		pusher:   &fakePusher{failFor: make(map[string]error)},
	}
	f.configs = newStubConfigRepo(f.variants)

	f.revenueSvc = service.NewRevenueService(f.revenue)
	f.mutationSvc = service.NewMutationService(f.variants, f.configs, f.history, f.pusher)
	f.toggleSvc = service.NewToggleService(f.variants, f.configs, f.history, f.pusher, 2.0)
	f.configSvc = service.NewConfigService(f.variants, f.configs, f.toggleSvc)
	f.webhookSvc = service.NewWebhookService(f.stores, f.products, f.variants, f.configs, f.history, f.events, 24)
	f.runSvc = service.NewRunService(f.configs, f.runs, f.revenueSvc, f.mutationSvc, 2)
	return f
}

func (f *fixture) seedStore(domain string) *model.Store {
	s := &model.Store{ID: uuid.New(), ShopDomain: domain, AccessToken: "tok", Active: true}
	f.stores.stores[s.ID] = s
	return s
}

func (f *fixture) seedProduct(store *model.Store, externalID string) *model.Product {
	p := &model.Product{ID: uuid.New(), StoreID: store.ID, ExternalProductID: externalID, Title: "Widget"}
	f.products.products[p.ID] = p
	return p
}

func (f *fixture) seedVariant(store *model.Store, product *model.Product, externalID string, price float64) *model.Variant {
	d := decimal.NewFromFloat(price)
	v := &model.Variant{
		ID:                uuid.New(),
		ProductID:         product.ID,
		StoreID:           store.ID,
		ExternalVariantID: externalID,
		CurrentPrice:      d,
		StartingPrice:     d,
	}
	f.variants.variants[v.ID] = v
	return v
}

func (f *fixture) seedConfig(variantID uuid.UUID, mutate func(*model.VariantPricingConfig)) *model.VariantPricingConfig {
	cfg := &model.VariantPricingConfig{
		ID:                          uuid.New(),
		VariantID:                   variantID,
		AutoPricingEnabled:          true,
		State:                       model.StateIncreasing,
		IncrementPercent:            decimal.NewFromInt(5),
		PeriodHours:                 24,
		RevenueDropThresholdPercent: decimal.NewFromInt(10),
		WaitHoursAfterRevert:        48,
		MaxIncreasePercent:          decimal.NewFromInt(25),
	}
	if mutate != nil {
		mutate(cfg)
	}
	cp := *cfg
	f.configs.configs[variantID] = &cp
	return cfg
}
