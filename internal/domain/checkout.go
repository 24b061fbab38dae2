package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Checkout represents a checkout session, keyed by (tenant, external id).
// CustomerID is empty for guest checkouts; no guest customer is synthesized.
// CompletedAt is nil while the checkout is still abandoned.
type Checkout struct {
	ID                   string          `json:"id"`
	TenantID             string          `json:"tenant_id"`
	ExternalID           string          `json:"external_id"`
	CustomerID           string          `json:"customer_id,omitempty"`
	TotalPrice           decimal.Decimal `json:"total_price"`
	Currency             string          `json:"currency"`
	AbandonedCheckoutURL string          `json:"abandoned_checkout_url"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
