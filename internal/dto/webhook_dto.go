package dto

// ProductUpdateEvent is the verified "product externally edited" webhook
// payload. Signature verification happens at the boundary before this struct
// is populated; only the external product id and the first variant's price
// are consumed here, everything else passes through unused.
type ProductUpdateEvent struct {
	EventID           string                `json:"event_id" validate:"required"`
	StoreDomain       string                `json:"store_domain" validate:"required"`
	ExternalProductID string                `json:"external_product_id" validate:"required"`
	Variants          []WebhookVariantPrice `json:"variants" validate:"required,min=1"`
}

type WebhookVariantPrice struct {
	Price string `json:"price" validate:"required"`
}
