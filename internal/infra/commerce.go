package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/model"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// CommerceClient talks to the commerce platform's Admin REST API. Every call
// is store-scoped: the shop domain and access token come from the local Store
// mirror. Rate limiting is NOT handled here — callers must go through the
// per-store PushQueue.
type CommerceClient struct {
	http       *resty.Client
	apiVersion string
}

func NewCommerceClient(apiVersion string, timeout time.Duration) *CommerceClient {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &CommerceClient{http: client, apiVersion: apiVersion}
}

type variantPayload struct {
	Variant map[string]interface{} `json:"variant"`
}

// UpdateVariantPrice sets the variant's price and explicitly clears the
// compare-at price so a reverted price never renders as a strike-through sale.
func (c *CommerceClient) UpdateVariantPrice(ctx context.Context, store *model.Store, externalVariantID string, price decimal.Decimal) error {
	url := fmt.Sprintf("https://%s/admin/api/%s/variants/%s.json", store.ShopDomain, c.apiVersion, externalVariantID)

	body := variantPayload{Variant: map[string]interface{}{
		"id":               externalVariantID,
		"price":            price.StringFixed(2),
		"compare_at_price": nil,
	}}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", store.AccessToken).
		SetBody(body).
		Put(url)
	if err != nil {
		return fmt.Errorf("commerce: update variant %s: %w", externalVariantID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("commerce: update variant %s: status %d", externalVariantID, resp.StatusCode())
	}
	return nil
}
