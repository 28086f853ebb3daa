package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/dto"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const webhookTopicProductUpdate = "products/update"

// casRetries bounds optimistic-write retries against concurrent writers.
const casRetries = 3

// WebhookService consumes verified "product externally edited" events and
// resets the evaluation clock for the affected variants. A manual edit pause
// is a distinct concept from an automated revert cooldown: this path never
// engages WaitingAfterRevert and never touches RevertWaitUntil.
type WebhookService interface {
	ProcessProductUpdate(ctx context.Context, evt dto.ProductUpdateEvent, rawPayload []byte) error
}

type webhookService struct {
	stores   repository.StoreRepository
	products repository.ProductRepository
	variants repository.VariantRepository
	configs  repository.PricingConfigRepository
	history  repository.PricingHistoryRepository
	events   repository.ProcessedEventRepository

	manualEditCooldown time.Duration
}

func NewWebhookService(
	stores repository.StoreRepository,
	products repository.ProductRepository,
	variants repository.VariantRepository,
	configs repository.PricingConfigRepository,
	history repository.PricingHistoryRepository,
	events repository.ProcessedEventRepository,
	manualEditCooldownHrs int,
) WebhookService {
	return &webhookService{
		stores:             stores,
		products:           products,
		variants:           variants,
		configs:            configs,
		history:            history,
		events:             events,
		manualEditCooldown: time.Duration(manualEditCooldownHrs) * time.Hour,
	}
}

func (s *webhookService) ProcessProductUpdate(ctx context.Context, evt dto.ProductUpdateEvent, rawPayload []byte) error {
	externalID, err := normalizeExternalID(evt.ExternalProductID)
	if err != nil {
		return err
	}
	if len(evt.Variants) == 0 {
		return &ValidationError{Msg: "event carries no variant prices"}
	}
	newPrice, err := decimal.NewFromString(evt.Variants[0].Price)
	if err != nil {
		return &ValidationError{Msg: "unparseable variant price: " + evt.Variants[0].Price}
	}

	store, err := s.stores.FindByDomain(ctx, evt.StoreDomain)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ValidationError{Msg: "unknown store domain: " + evt.StoreDomain}
		}
		return err
	}

	// Idempotency ledger insert — the unique (event_id, store_id) index is the
	// arbiter, so a replayed delivery (or a concurrent duplicate) degrades to
	// a successful no-op with zero additional writes.
	hash := sha256.Sum256(rawPayload)
	rec := &model.ProcessedEventRecord{
		EventID:     evt.EventID,
		StoreID:     store.ID,
		Topic:       webhookTopicProductUpdate,
		PayloadHash: hex.EncodeToString(hash[:]),
		ProcessedAt: time.Now(),
	}
	if err := s.events.Insert(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateEvent) {
			log.Info().
				Str("event_id", evt.EventID).
				Str("store_id", store.ID.String()).
				Msg("webhook: duplicate delivery, no-op")
			return nil
		}
		return err
	}

	product, err := s.products.FindByExternalID(ctx, store.ID, externalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Not a mirrored product — nothing to reset.
			log.Debug().
				Str("external_product_id", externalID).
				Msg("webhook: product not mirrored locally, ignoring")
			return nil
		}
		return err
	}

	variants, err := s.variants.ListByProductID(ctx, product.ID)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range variants {
		if err := s.resetVariant(ctx, &variants[i], newPrice, now); err != nil {
			return err
		}
	}
	return nil
}

// resetVariant mirrors the externally edited price and pushes the next
// evaluation out by the fixed manual-edit cooldown. State and RevertWaitUntil
// are deliberately left alone.
func (s *webhookService) resetVariant(ctx context.Context, variant *model.Variant, newPrice decimal.Decimal, now time.Time) error {
	oldPrice := variant.CurrentPrice
	if err := s.variants.UpdatePrice(ctx, variant.ID, newPrice); err != nil {
		return err
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		cfg, err := s.configs.FindByVariantID(ctx, variant.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Variant never opted into smart pricing — mirror update only.
				return nil
			}
			return err
		}

		next := now.Add(s.manualEditCooldown)
		cfg.LastPriceChangeAt = &now
		cfg.NextEligibleAt = &next

		err = s.configs.UpdateVersioned(ctx, cfg)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrConcurrentModification) {
			return err
		}
		if attempt == casRetries-1 {
			return err
		}
	}

	entry := &model.PricingHistoryEntry{
		VariantID: variant.ID,
		ProductID: variant.ProductID,
		StoreID:   variant.StoreID,
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
		Action:    model.ActionManualReset,
		Reason:    "manual price edit detected, evaluation clock reset",
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return err
	}

	log.Info().
		Str("variant_id", variant.ID.String()).
		Str("new_price", newPrice.StringFixed(2)).
		Msg("webhook: cycle reset after manual edit")
	return nil
}

// normalizeExternalID canonicalizes a platform product id to its numeric
// form. GraphQL-style ids ("gid://.../Product/123") are reduced to the
// trailing numeric segment; anything non-numeric is rejected.
func normalizeExternalID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if idx := strings.LastIndex(id, "/"); idx >= 0 {
		id = id[idx+1:]
	}
	if id == "" {
		return "", &ValidationError{Msg: "empty external product id"}
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", &ValidationError{Msg: "non-numeric external product id: " + raw}
		}
	}
	return id, nil
}
