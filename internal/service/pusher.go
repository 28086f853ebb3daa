package service

import (
	"context"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/infra"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExternalPricePusher is the single door through which any component mutates
// a price on the commerce platform. Tests inject a fake; the production
// implementation serializes per store and runs behind the circuit breaker.
type ExternalPricePusher interface {
	PushPrice(ctx context.Context, storeID uuid.UUID, externalVariantID string, price decimal.Decimal) error
}

// CommerceGateway is the subset of the commerce REST client the pusher needs.
type CommerceGateway interface {
	UpdateVariantPrice(ctx context.Context, store *model.Store, externalVariantID string, price decimal.Decimal) error
}

type throttledPusher struct {
	stores   repository.StoreRepository
	queue    *infra.PushQueue
	cb       *infra.CircuitBreaker
	commerce CommerceGateway
}

// NewThrottledPusher builds the production pusher: store token lookup, then
// the per-store rate-limit lane, then the circuit breaker, then the API call.
func NewThrottledPusher(stores repository.StoreRepository, queue *infra.PushQueue, cb *infra.CircuitBreaker, commerce CommerceGateway) ExternalPricePusher {
	return &throttledPusher{stores: stores, queue: queue, cb: cb, commerce: commerce}
}

func (p *throttledPusher) PushPrice(ctx context.Context, storeID uuid.UUID, externalVariantID string, price decimal.Decimal) error {
	store, err := p.stores.FindByID(ctx, storeID)
	if err != nil {
		return err
	}
	return p.queue.Do(ctx, storeID, func() error {
		return p.cb.Execute(func() error {
			return p.commerce.UpdateVariantPrice(ctx, store, externalVariantID, price)
		})
	})
}
