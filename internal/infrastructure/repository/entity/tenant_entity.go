package entity

import (
	"time"

	"shopify-ingest-layer/internal/domain"

	"github.com/uptrace/bun"
)

// TenantRecord represents a tenant row.
type TenantRecord struct {
	bun.BaseModel `bun:"table:tenants"`

	ID            string    `bun:"id,pk"`
	Name          string    `bun:"name,notnull"`
	ShopDomain    string    `bun:"shop_domain,notnull,unique"`
	OwnerEmail    string    `bun:"owner_email,notnull,unique"`
	WebhookSecret string    `bun:"webhook_secret,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

// ToDomain converts the record to a domain entity.
func (r *TenantRecord) ToDomain() *domain.Tenant {
	return &domain.Tenant{
		ID:            r.ID,
		Name:          r.Name,
		ShopDomain:    r.ShopDomain,
		OwnerEmail:    r.OwnerEmail,
		WebhookSecret: r.WebhookSecret,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// TenantRecordFromDomain converts a domain entity to a record.
func TenantRecordFromDomain(tenant *domain.Tenant) *TenantRecord {
	return &TenantRecord{
		ID:            tenant.ID,
		Name:          tenant.Name,
		ShopDomain:    tenant.ShopDomain,
		OwnerEmail:    tenant.OwnerEmail,
		WebhookSecret: tenant.WebhookSecret,
		CreatedAt:     tenant.CreatedAt,
		UpdatedAt:     tenant.UpdatedAt,
	}
}
