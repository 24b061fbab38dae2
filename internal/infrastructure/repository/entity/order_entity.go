package entity

import (
	"time"

	"shopify-ingest-layer/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// OrderRecord represents an order row, unique on (tenant_id, external_id).
type OrderRecord struct {
	bun.BaseModel `bun:"table:orders"`

	ID          string          `bun:"id,pk"`
	TenantID    string          `bun:"tenant_id,notnull"`
	ExternalID  string          `bun:"external_id,notnull"`
	CustomerID  string          `bun:"customer_id,notnull"`
	OrderNumber string          `bun:"order_number"`
	TotalPrice  decimal.Decimal `bun:"total_price,type:numeric,notnull"`
	Currency    string          `bun:"currency"`
	CreatedAt   time.Time       `bun:"created_at,notnull"`
	UpdatedAt   time.Time       `bun:"updated_at,notnull"`
}

// ToDomain converts the record to a domain entity.
func (r *OrderRecord) ToDomain() *domain.Order {
	return &domain.Order{
		ID:          r.ID,
		TenantID:    r.TenantID,
		ExternalID:  r.ExternalID,
		CustomerID:  r.CustomerID,
		OrderNumber: r.OrderNumber,
		TotalPrice:  r.TotalPrice,
		Currency:    r.Currency,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// OrderRecordFromDomain converts a domain entity to a record.
func OrderRecordFromDomain(order *domain.Order) *OrderRecord {
	return &OrderRecord{
		ID:          order.ID,
		TenantID:    order.TenantID,
		ExternalID:  order.ExternalID,
		CustomerID:  order.CustomerID,
		OrderNumber: order.OrderNumber,
		TotalPrice:  order.TotalPrice,
		Currency:    order.Currency,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}
