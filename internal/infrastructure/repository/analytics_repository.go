package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"shopify-ingest-layer/internal/infrastructure/repository/entity"
	"shopify-ingest-layer/internal/ports"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// BunAnalyticsRepository implements the dashboard read queries. It only
// reads the tables the materializer writes; every query is tenant-scoped.
type BunAnalyticsRepository struct {
	db *bun.DB
}

// NewBunAnalyticsRepository creates a new analytics repository.
func NewBunAnalyticsRepository(db *bun.DB) ports.AnalyticsRepository {
	return &BunAnalyticsRepository{db: db}
}

// TotalRevenue returns the exact decimal sum of order prices for the tenant
// within [from, to]. Zero time bounds are treated as unbounded.
func (r *BunAnalyticsRepository) TotalRevenue(ctx context.Context, tenantID string, from, to time.Time) (decimal.Decimal, error) {
	orders, err := r.ordersInRange(ctx, tenantID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, order := range orders {
		total = total.Add(order.TotalPrice)
	}
	return total, nil
}

// ActiveCustomerCount returns the number of distinct customers that placed
// an order for the tenant within [from, to].
func (r *BunAnalyticsRepository) ActiveCustomerCount(ctx context.Context, tenantID string, from, to time.Time) (int, error) {
	orders, err := r.ordersInRange(ctx, tenantID, from, to)
	if err != nil {
		return 0, err
	}
	customers := make(map[string]struct{})
	for _, order := range orders {
		customers[order.CustomerID] = struct{}{}
	}
	return len(customers), nil
}

// TopCustomersBySpend returns the tenant's highest-spending customers by
// their derived total_spend.
func (r *BunAnalyticsRepository) TopCustomersBySpend(ctx context.Context, tenantID string, limit int) ([]ports.CustomerSummary, error) {
	var records []entity.CustomerRecord
	err := r.db.NewSelect().
		Model(&records).
		Where("tenant_id = ?", tenantID).
		OrderExpr("total_spend DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list top customers: %w", err)
	}

	summaries := make([]ports.CustomerSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, ports.CustomerSummary{
			ID:          record.ID,
			FirstName:   record.FirstName,
			LastName:    record.LastName,
			Email:       record.Email,
			TotalSpend:  record.TotalSpend,
			OrdersCount: record.OrdersCount,
		})
	}
	return summaries, nil
}

// SalesByDay returns order revenue grouped by calendar day (UTC), oldest
// first. Grouping happens in Go after a tenant-scoped fetch; day
// truncation in SQL is not portable across the supported dialects.
func (r *BunAnalyticsRepository) SalesByDay(ctx context.Context, tenantID string, from, to time.Time) ([]ports.DailySales, error) {
	orders, err := r.ordersInRange(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]decimal.Decimal)
	for _, order := range orders {
		day := order.CreatedAt.UTC().Format("2006-01-02")
		byDay[day] = byDay[day].Add(order.TotalPrice)
	}

	sales := make([]ports.DailySales, 0, len(byDay))
	for day, total := range byDay {
		sales = append(sales, ports.DailySales{Date: day, Sales: total})
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].Date < sales[j].Date })
	return sales, nil
}

func (r *BunAnalyticsRepository) ordersInRange(ctx context.Context, tenantID string, from, to time.Time) ([]entity.OrderRecord, error) {
	query := r.db.NewSelect().
		Model((*entity.OrderRecord)(nil)).
		Where("tenant_id = ?", tenantID)
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at <= ?", to)
	}

	var orders []entity.OrderRecord
	if err := query.Scan(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, nil
}
