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
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// BunStore implements ports.Store on a relational database through bun.
// Every write runs inside a transaction opened by InTx; the database's
// row-level locking on the affected rows serializes concurrent jobs
// touching the same customer.
type BunStore struct {
	db *bun.DB
}

// NewBunStore creates a new relational store.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// InTx runs fn inside a single transaction. Any error from fn rolls the
// whole transaction back: a customer upsert without its order, or an order
// without the recomputed aggregates, is never observably persisted.
func (s *BunStore) InTx(ctx context.Context, fn func(ctx context.Context, tx ports.StoreTx) error) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &bunStoreTx{tx: tx})
	})
}

// bunStoreTx implements ports.StoreTx over one open transaction.
type bunStoreTx struct {
	tx bun.Tx
}

// UpsertCustomer creates or updates a customer by (tenant_id, external_id),
// overwriting mutable profile fields on conflict. The derived totals are
// left untouched here; they belong to RecomputeCustomerAggregates.
func (t *bunStoreTx) UpsertCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	now := time.Now().UTC()
	record := entity.CustomerRecordFromDomain(customer)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := t.tx.NewInsert().
		Model(record).
		On("CONFLICT (tenant_id, external_id) DO UPDATE").
		Set("email = EXCLUDED.email").
		Set("first_name = EXCLUDED.first_name").
		Set("last_name = EXCLUDED.last_name").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	var stored entity.CustomerRecord
	err = t.tx.NewSelect().
		Model(&stored).
		Where("tenant_id = ?", customer.TenantID).
		Where("external_id = ?", customer.ExternalID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load upserted customer: %w", err)
	}
	return stored.ToDomain(), nil
}

// UpsertOrder creates or updates an order by (tenant_id, external_id),
// overwriting price and currency on conflict.
func (t *bunStoreTx) UpsertOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	now := time.Now().UTC()
	record := entity.OrderRecordFromDomain(order)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := t.tx.NewInsert().
		Model(record).
		On("CONFLICT (tenant_id, external_id) DO UPDATE").
		Set("total_price = EXCLUDED.total_price").
		Set("currency = EXCLUDED.currency").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert order: %w", err)
	}

	var stored entity.OrderRecord
	err = t.tx.NewSelect().
		Model(&stored).
		Where("tenant_id = ?", order.TenantID).
		Where("external_id = ?", order.ExternalID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load upserted order: %w", err)
	}
	return stored.ToDomain(), nil
}

// RecomputeCustomerAggregates rewrites total_spend and orders_count from
// the customer's full current order set. Prices are summed as exact
// decimals in Go rather than with SQL SUM, which would degrade to floating
// point on some dialects. Reprocessing an identical webhook therefore
// yields identical aggregates.
func (t *bunStoreTx) RecomputeCustomerAggregates(ctx context.Context, tenantID, customerID string) error {
	var orders []entity.OrderRecord
	err := t.tx.NewSelect().
		Model(&orders).
		Column("total_price").
		Where("tenant_id = ?", tenantID).
		Where("customer_id = ?", customerID).
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to load orders for recompute: %w", err)
	}

	totalSpend := decimal.Zero
	for _, order := range orders {
		totalSpend = totalSpend.Add(order.TotalPrice)
	}

	_, err = t.tx.NewUpdate().
		Model((*entity.CustomerRecord)(nil)).
		Set("total_spend = ?", totalSpend).
		Set("orders_count = ?", len(orders)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("tenant_id = ?", tenantID).
		Where("id = ?", customerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to write customer aggregates: %w", err)
	}
	return nil
}

// UpsertProduct creates or updates a product by (tenant_id, external_id).
func (t *bunStoreTx) UpsertProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	now := time.Now().UTC()
	record := entity.ProductRecordFromDomain(product)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := t.tx.NewInsert().
		Model(record).
		On("CONFLICT (tenant_id, external_id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("price = EXCLUDED.price").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert product: %w", err)
	}

	var stored entity.ProductRecord
	err = t.tx.NewSelect().
		Model(&stored).
		Where("tenant_id = ?", product.TenantID).
		Where("external_id = ?", product.ExternalID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load upserted product: %w", err)
	}
	return stored.ToDomain(), nil
}

// UpsertCheckout creates or updates a checkout by (tenant_id, external_id).
// The customer association is only set on create; guest checkouts keep an
// empty customer id.
func (t *bunStoreTx) UpsertCheckout(ctx context.Context, checkout *domain.Checkout) (*domain.Checkout, error) {
	now := time.Now().UTC()
	record := entity.CheckoutRecordFromDomain(checkout)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := t.tx.NewInsert().
		Model(record).
		On("CONFLICT (tenant_id, external_id) DO UPDATE").
		Set("total_price = EXCLUDED.total_price").
		Set("currency = EXCLUDED.currency").
		Set("abandoned_checkout_url = EXCLUDED.abandoned_checkout_url").
		Set("completed_at = EXCLUDED.completed_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert checkout: %w", err)
	}

	var stored entity.CheckoutRecord
	err = t.tx.NewSelect().
		Model(&stored).
		Where("tenant_id = ?", checkout.TenantID).
		Where("external_id = ?", checkout.ExternalID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load upserted checkout: %w", err)
	}
	return stored.ToDomain(), nil
}

// GetCustomerByExternalID returns a customer by its upstream id, or nil if
// it does not exist for this tenant.
func (s *BunStore) GetCustomerByExternalID(ctx context.Context, tenantID, externalID string) (*domain.Customer, error) {
	var record entity.CustomerRecord
	err := s.db.NewSelect().
		Model(&record).
		Where("tenant_id = ?", tenantID).
		Where("external_id = ?", externalID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return record.ToDomain(), nil
}

// GetOrderByExternalID returns an order by its upstream id, or nil if it
// does not exist for this tenant.
func (s *BunStore) GetOrderByExternalID(ctx context.Context, tenantID, externalID string) (*domain.Order, error) {
	var record entity.OrderRecord
	err := s.db.NewSelect().
		Model(&record).
		Where("tenant_id = ?", tenantID).
		Where("external_id = ?", externalID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return record.ToDomain(), nil
}

// GetProductByExternalID returns a product by its upstream id, or nil if it
// does not exist for this tenant.
func (s *BunStore) GetProductByExternalID(ctx context.Context, tenantID, externalID string) (*domain.Product, error) {
	var record entity.ProductRecord
	err := s.db.NewSelect().
		Model(&record).
		Where("tenant_id = ?", tenantID).
		Where("external_id = ?", externalID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return record.ToDomain(), nil
}

// GetCheckoutByExternalID returns a checkout by its upstream id, or nil if
// it does not exist for this tenant.
func (s *BunStore) GetCheckoutByExternalID(ctx context.Context, tenantID, externalID string) (*domain.Checkout, error) {
	var record entity.CheckoutRecord
	err := s.db.NewSelect().
		Model(&record).
		Where("tenant_id = ?", tenantID).
		Where("external_id = ?", externalID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout: %w", err)
	}
	return record.ToDomain(), nil
}

// CountCustomers returns the number of customer rows owned by the tenant.
func (s *BunStore) CountCustomers(ctx context.Context, tenantID string) (int, error) {
	count, err := s.db.NewSelect().
		Model((*entity.CustomerRecord)(nil)).
		Where("tenant_id = ?", tenantID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}

// CountOrders returns the number of order rows owned by the tenant.
func (s *BunStore) CountOrders(ctx context.Context, tenantID string) (int, error) {
	count, err := s.db.NewSelect().
		Model((*entity.OrderRecord)(nil)).
		Where("tenant_id = ?", tenantID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}
