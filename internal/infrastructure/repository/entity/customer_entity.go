package entity

import (
	"time"

	"shopify-ingest-layer/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// CustomerRecord represents a customer row, unique on (tenant_id, external_id).
type CustomerRecord struct {
	bun.BaseModel `bun:"table:customers"`

	ID          string          `bun:"id,pk"`
	TenantID    string          `bun:"tenant_id,notnull"`
	ExternalID  string          `bun:"external_id,notnull"`
	Email       string          `bun:"email"`
	FirstName   string          `bun:"first_name"`
	LastName    string          `bun:"last_name"`
	TotalSpend  decimal.Decimal `bun:"total_spend,type:numeric,notnull"`
	OrdersCount int             `bun:"orders_count,notnull"`
	CreatedAt   time.Time       `bun:"created_at,notnull"`
	UpdatedAt   time.Time       `bun:"updated_at,notnull"`
}

// ToDomain converts the record to a domain entity.
func (r *CustomerRecord) ToDomain() *domain.Customer {
	return &domain.Customer{
		ID:          r.ID,
		TenantID:    r.TenantID,
		ExternalID:  r.ExternalID,
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		TotalSpend:  r.TotalSpend,
		OrdersCount: r.OrdersCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// CustomerRecordFromDomain converts a domain entity to a record.
func CustomerRecordFromDomain(customer *domain.Customer) *CustomerRecord {
	return &CustomerRecord{
		ID:          customer.ID,
		TenantID:    customer.TenantID,
		ExternalID:  customer.ExternalID,
		Email:       customer.Email,
		FirstName:   customer.FirstName,
		LastName:    customer.LastName,
		TotalSpend:  customer.TotalSpend,
		OrdersCount: customer.OrdersCount,
		CreatedAt:   customer.CreatedAt,
		UpdatedAt:   customer.UpdatedAt,
	}
}
