package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer represents a storefront customer, keyed by (tenant, external id).
//
// TotalSpend and OrdersCount are derived fields: they are recomputed from
// the customer's full order set inside the same transaction that writes an
// order, never incremented. Incrementing is not idempotent under
// at-least-once webhook delivery; a full recompute is.
type Customer struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	ExternalID  string          `json:"external_id"`
	Email       string          `json:"email"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	TotalSpend  decimal.Decimal `json:"total_spend"`
	OrdersCount int             `json:"orders_count"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
