package ports

import (
	"context"
	"time"

	"shopify-ingest-layer/internal/domain"

	"github.com/shopspring/decimal"
)

// TenantRepository defines the interface for tenant persistence. Tenants
// are looked up by id (dashboard calls), shop domain (webhooks) or owner
// email (login). A nil tenant with a nil error means not found.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	GetByShopDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error)
	GetByOwnerEmail(ctx context.Context, email string) (*domain.Tenant, error)
}

// Store is the materializer's write interface. All writes for one webhook
// job happen inside a single InTx call: either every upsert and recompute
// commits, or none of them do.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx StoreTx) error) error
}

// StoreTx exposes the tenant-scoped upsert operations available inside a
// transaction. Upserts are keyed by (tenant_id, external_id) and safe to
// repeat with identical input.
type StoreTx interface {
	// UpsertCustomer creates or updates a customer and returns the stored
	// row, including its internal id for order association. Derived totals
	// are never touched here; RecomputeCustomerAggregates owns them.
	UpsertCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)

	// UpsertOrder creates or updates an order, overwriting price and
	// currency on update.
	UpsertOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)

	// RecomputeCustomerAggregates rewrites the customer's total_spend and
	// orders_count from the customer's full current order set.
	RecomputeCustomerAggregates(ctx context.Context, tenantID, customerID string) error

	UpsertProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpsertCheckout(ctx context.Context, checkout *domain.Checkout) (*domain.Checkout, error)
}

// CustomerSummary is a dashboard projection of a customer's derived totals.
type CustomerSummary struct {
	ID          string          `json:"id"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	TotalSpend  decimal.Decimal `json:"total_spend"`
	OrdersCount int             `json:"orders_count"`
}

// DailySales is one day's aggregated order revenue.
type DailySales struct {
	Date  string          `json:"date"`
	Sales decimal.Decimal `json:"sales"`
}

// AnalyticsRepository defines the tenant-scoped read queries backing the
// dashboard. It reads the same tables the materializer writes.
type AnalyticsRepository interface {
	TotalRevenue(ctx context.Context, tenantID string, from, to time.Time) (decimal.Decimal, error)
	ActiveCustomerCount(ctx context.Context, tenantID string, from, to time.Time) (int, error)
	TopCustomersBySpend(ctx context.Context, tenantID string, limit int) ([]CustomerSummary, error)
	SalesByDay(ctx context.Context, tenantID string, from, to time.Time) ([]DailySales, error)
}
