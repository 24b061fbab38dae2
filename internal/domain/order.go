package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a placed order, keyed by (tenant, external id). Every
// order belongs to exactly one customer within the same tenant; orders
// without a customer reference are never persisted.
type Order struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	ExternalID  string          `json:"external_id"`
	CustomerID  string          `json:"customer_id"`
	OrderNumber string          `json:"order_number"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
