package entity

import (
	"time"

	"shopify-ingest-layer/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ProductRecord represents a product row, unique on (tenant_id, external_id).
type ProductRecord struct {
	bun.BaseModel `bun:"table:products"`

	ID         string          `bun:"id,pk"`
	TenantID   string          `bun:"tenant_id,notnull"`
	ExternalID string          `bun:"external_id,notnull"`
	Title      string          `bun:"title"`
	Price      decimal.Decimal `bun:"price,type:numeric,notnull"`
	CreatedAt  time.Time       `bun:"created_at,notnull"`
	UpdatedAt  time.Time       `bun:"updated_at,notnull"`
}

// ToDomain converts the record to a domain entity.
func (r *ProductRecord) ToDomain() *domain.Product {
	return &domain.Product{
		ID:         r.ID,
		TenantID:   r.TenantID,
		ExternalID: r.ExternalID,
		Title:      r.Title,
		Price:      r.Price,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// ProductRecordFromDomain converts a domain entity to a record.
func ProductRecordFromDomain(product *domain.Product) *ProductRecord {
	return &ProductRecord{
		ID:         product.ID,
		TenantID:   product.TenantID,
		ExternalID: product.ExternalID,
		Title:      product.Title,
		Price:      product.Price,
		CreatedAt:  product.CreatedAt,
		UpdatedAt:  product.UpdatedAt,
	}
}
