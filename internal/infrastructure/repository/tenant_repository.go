package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopify-ingest-layer/internal/domain"
	"shopify-ingest-layer/internal/infrastructure/repository/entity"
	"shopify-ingest-layer/internal/ports"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunTenantRepository implements TenantRepository on a relational database.
type BunTenantRepository struct {
	db *bun.DB
}

// NewBunTenantRepository creates a new tenant repository.
func NewBunTenantRepository(db *bun.DB) ports.TenantRepository {
	return &BunTenantRepository{db: db}
}

// Create persists a new tenant.
func (r *BunTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	record := entity.TenantRecordFromDomain(tenant)
	if record.ID == "" {
		record.ID = uuid.NewString()
		tenant.ID = record.ID
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// GetByID retrieves a tenant by id.
func (r *BunTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByShopDomain retrieves a tenant by its shop domain.
func (r *BunTenantRepository) GetByShopDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	return r.getOne(ctx, "shop_domain = ?", shopDomain)
}

// GetByOwnerEmail retrieves a tenant by its owner's email address.
func (r *BunTenantRepository) GetByOwnerEmail(ctx context.Context, email string) (*domain.Tenant, error) {
	return r.getOne(ctx, "owner_email = ?", email)
}

func (r *BunTenantRepository) getOne(ctx context.Context, where string, arg interface{}) (*domain.Tenant, error) {
	var record entity.TenantRecord
	err := r.db.NewSelect().Model(&record).Where(where, arg).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return record.ToDomain(), nil
}
