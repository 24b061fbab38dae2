package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a storefront product, keyed by (tenant, external id).
// Price is the first variant's price, a documented simplification.
type Product struct {
	ID         string          `json:"id"`
	TenantID   string          `json:"tenant_id"`
	ExternalID string          `json:"external_id"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
