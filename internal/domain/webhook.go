package domain

import (
	"encoding/json"
	"time"
)

// Webhook topics handled by the ingestion pipeline.
const (
	TopicOrdersCreate    = "orders/create"
	TopicOrdersUpdated   = "orders/updated"
	TopicProductsCreate  = "products/create"
	TopicProductsUpdate  = "products/update"
	TopicCheckoutsCreate = "checkouts/create"
	TopicCheckoutsUpdate = "checkouts/update"
)

// WebhookEvent represents a verified inbound webhook as received at the
// intake gateway. Payload holds the untouched raw request body bytes: the
// signature was computed over exactly this byte sequence, and handlers
// parse it themselves.
type WebhookEvent struct {
	Topic      string    `json:"topic"`
	ShopDomain string    `json:"shop_domain"`
	TenantID   string    `json:"tenant_id"`
	Payload    []byte    `json:"payload"`
	Verified   bool      `json:"verified"`
	ReceivedAt time.Time `json:"received_at"`
}

// WebhookJob is the unit of work persisted on the durable queue. One job is
// enqueued per accepted webhook; delivery is at-least-once.
type WebhookJob struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	TenantID   string          `json:"tenant_id"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}
