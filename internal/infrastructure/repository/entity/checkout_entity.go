package entity

import (
	"time"

	"shopify-ingest-layer/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// CheckoutRecord represents a checkout row, unique on (tenant_id, external_id).
// CustomerID is empty for guest checkouts; CompletedAt is null while the
// checkout remains abandoned.
type CheckoutRecord struct {
	bun.BaseModel `bun:"table:checkouts"`

	ID                   string          `bun:"id,pk"`
	TenantID             string          `bun:"tenant_id,notnull"`
	ExternalID           string          `bun:"external_id,notnull"`
	CustomerID           string          `bun:"customer_id"`
	TotalPrice           decimal.Decimal `bun:"total_price,type:numeric,notnull"`
	Currency             string          `bun:"currency"`
	AbandonedCheckoutURL string          `bun:"abandoned_checkout_url"`
	CompletedAt          *time.Time      `bun:"completed_at,nullzero"`
	CreatedAt            time.Time       `bun:"created_at,notnull"`
	UpdatedAt            time.Time       `bun:"updated_at,notnull"`
}

// ToDomain converts the record to a domain entity.
func (r *CheckoutRecord) ToDomain() *domain.Checkout {
	return &domain.Checkout{
		ID:                   r.ID,
		TenantID:             r.TenantID,
		ExternalID:           r.ExternalID,
		CustomerID:           r.CustomerID,
		TotalPrice:           r.TotalPrice,
		Currency:             r.Currency,
		AbandonedCheckoutURL: r.AbandonedCheckoutURL,
		CompletedAt:          r.CompletedAt,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

// CheckoutRecordFromDomain converts a domain entity to a record.
func CheckoutRecordFromDomain(checkout *domain.Checkout) *CheckoutRecord {
	return &CheckoutRecord{
		ID:                   checkout.ID,
		TenantID:             checkout.TenantID,
		ExternalID:           checkout.ExternalID,
		CustomerID:           checkout.CustomerID,
		TotalPrice:           checkout.TotalPrice,
		Currency:             checkout.Currency,
		AbandonedCheckoutURL: checkout.AbandonedCheckoutURL,
		CompletedAt:          checkout.CompletedAt,
		CreatedAt:            checkout.CreatedAt,
		UpdatedAt:            checkout.UpdatedAt,
	}
}
