package application_test

import (
	"context"
	"testing"
	"time"

	"shopify-ingest-layer/internal/application"
	"shopify-ingest-layer/internal/infrastructure/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) *repository.BunStore {
	t.Helper()
	db, err := repository.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := repository.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return repository.NewBunStore(db)
}

func newIngestion(t *testing.T) (*application.IngestionService, *repository.BunStore) {
	t.Helper()
	store := newTestStore(t)
	return application.NewIngestionService(store, zerolog.Nop()), store
}

func orderInput(externalID, price string) application.OrderInput {
	return application.OrderInput{
		ExternalID: externalID,
		Number:     "#1001",
		TotalPrice: decimal.RequireFromString(price),
		Currency:   "USD",
		Customer: &application.CustomerInput{
			ExternalID: "c1",
			Email:      "a@x.com",
			FirstName:  "Ada",
			LastName:   "Lovelace",
		},
	}
}

func TestIngestOrder_CreatesCustomerAndOrder(t *testing.T) {
	ingestion, store := newIngestion(t)
	ctx := context.Background()

	if err := ingestion.IngestOrder(ctx, "tenant-a", orderInput("9001", "50.00")); err != nil {
		t.Fatalf("ingest order: %v", err)
	}

	customer, err := store.GetCustomerByExternalID(ctx, "tenant-a", "c1")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if customer == nil {
		t.Fatalf("expected customer to be created")
	}
	if customer.Email != "a@x.com" {
		t.Fatalf("expected customer email a@x.com, got %q", customer.Email)
	}
	if !customer.TotalSpend.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected total_spend 50.00, got %s", customer.TotalSpend)
	}
	if customer.OrdersCount != 1 {
		t.Fatalf("expected orders_count 1, got %d", customer.OrdersCount)
	}

	order, err := store.GetOrderByExternalID(ctx, "tenant-a", "9001")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order == nil {
		t.Fatalf("expected order to be created")
	}
	if order.CustomerID != customer.ID {
		t.Fatalf("expected order to belong to customer %s, got %s", customer.ID, order.CustomerID)
	}
	if !order.TotalPrice.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected order price 50.00, got %s", order.TotalPrice)
	}
}

func TestIngestOrder_IdempotentUnderRedelivery(t *testing.T) {
	ingestion, store := newIngestion(t)
	ctx := context.Background()

	// At-least-once delivery: the identical payload may arrive any number
	// of times and must leave exactly one customer and one order behind.
	for i := 0; i < 3; i++ {
		if err := ingestion.IngestOrder(ctx, "tenant-a", orderInput("9001", "50.00")); err != nil {
			t.Fatalf("ingest order attempt %d: %v", i+1, err)
		}
	}

	customers, err := store.CountCustomers(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("count customers: %v", err)
	}
	if customers != 1 {
		t.Fatalf("expected 1 customer row, got %d", customers)
	}
	orders, err := store.CountOrders(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orders != 1 {
		t.Fatalf("expected 1 order row, got %d", orders)
	}

	customer, err := store.GetCustomerByExternalID(ctx, "tenant-a", "c1")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if !customer.TotalSpend.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("expected total_spend 50.00 after redelivery, got %s", customer.TotalSpend)
	}
	if customer.OrdersCount != 1 {
		t.Fatalf("expected orders_count 1 after redelivery, got %d", customer.OrdersCount)
	}
}

func TestIngestOrder_AggregatesAcrossOrders(t *testing.T) {
	ingestion, store := newIngestion(t)
	ctx := context.Background()

	if err := ingestion.IngestOrder(ctx, "tenant-a", orderInput("9001", "50.00")); err != nil {
		t.Fatalf("ingest first order: %v", err)
	}
	if err := ingestion.IngestOrder(ctx, "tenant-a", orderInput("9002", "25.00")); err != nil {
		t.Fatalf("ingest second order: %v", err)
	}
	// Redeliver the first order out of order; the aggregate must not move.
	if err := ingestion.IngestOrder(ctx, "tenant-a", orderInput("9001", "50.00")); err != nil {
		t.Fatalf("redeliver first order: %v", err)
	}

	customer, err := store.GetCustomerByExternalID(ctx, "tenant-a", "c1")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if !customer.TotalSpend.Equal(decimal.RequireFromString("75.00")) {
		t.Fatalf("expected total_spend 75.00, got %s", customer.TotalSpend)
	}
	if customer.OrdersCount != 2 {
		t.Fatalf("expected orders_count 2, got %d", customer.OrdersCount)
	}
}

func TestIngestOrder_UpdateOverwritesPrice(t *testing.T) {
	ingestion, store := newIngestion(t)
	ctx := context.Background()

	if err := ingestion.IngestOrder(ctx, "tenant-a", orderInput("9001", "50.00")); err != nil {
		t.Fatalf("ingest order: %v", err)
	}
	if err := ingestion.IngestOrder(ctx, "tenant-a", orderInput("9001", "60.00")); err != nil {
		t.Fatalf("ingest order update: %v", err)
	}

	orders, err := store.CountOrders(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orders != 1 {
		t.Fatalf("expected 1 order row after update, got %d", orders)
	}

	customer, err := store.GetCustomerByExternalID(ctx, "tenant-a", "c1")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if !customer.TotalSpend.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("expected total_spend 60.00 after price update, got %s", customer.TotalSpend)
	}
	if customer.OrdersCount != 1 {
		t.Fatalf("expected orders_count 1 after price update, got %d", customer.OrdersCount)
	}
}

func TestIngestOrder_WithoutCustomerIsDropped(t *testing.T) {
	ingestion, store := newIngestion(t)
	ctx := context.Background()

	input := orderInput("9001", "50.00")
	input.Customer = nil
	if err := ingestion.IngestOrder(ctx, "tenant-a", input); err != nil {
		t.Fatalf("expected customer-less order to be dropped without error, got %v", err)
	}

	customers, err := store.CountCustomers(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("count customers: %v", err)
	}
	orders, err := store.CountOrders(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if customers != 0 || orders != 0 {
		t.Fatalf("expected no rows for customer-less order, got %d customers, %d orders", customers, orders)
	}
}

func TestIngestOrder_TenantIsolation(t *testing.T) {
	ingestion, store := newIngestion(t)
	ctx := context.Background()

	// Identical external ids under two tenants must never collide.
	if err := ingestion.IngestOrder(ctx, "tenant-a", orderInput("9001", "50.00")); err != nil {
		t.Fatalf("ingest tenant-a order: %v", err)
	}
	if err := ingestion.IngestOrder(ctx, "tenant-b", orderInput("9001", "99.00")); err != nil {
		t.Fatalf("ingest tenant-b order: %v", err)
	}

	customerA, err := store.GetCustomerByExternalID(ctx, "tenant-a", "c1")
	if err != nil {
		t.Fatalf("get tenant-a customer: %v", err)
	}
	customerB, err := store.GetCustomerByExternalID(ctx, "tenant-b", "c1")
	if err != nil {
		t.Fatalf("get tenant-b customer: %v", err)
	}
	if customerA.ID == customerB.ID {
		t.Fatalf("expected distinct customer rows per tenant")
	}
	if !customerA.TotalSpend.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("tenant-a total_spend altered by tenant-b write: %s", customerA.TotalSpend)
	}
	if !customerB.TotalSpend.Equal(decimal.RequireFromString("99.00")) {
		t.Fatalf("expected tenant-b total_spend 99.00, got %s", customerB.TotalSpend)
	}
}

func TestIngestProduct_Upsert(t *testing.T) {
	ingestion, store := newIngestion(t)
	ctx := context.Background()

	if err := ingestion.IngestProduct(ctx, "tenant-a", application.ProductInput{
		ExternalID: "p1",
		Title:      "Hoodie",
		Price:      decimal.RequireFromString("49.99"),
	}); err != nil {
		t.Fatalf("ingest product: %v", err)
	}
	if err := ingestion.IngestProduct(ctx, "tenant-a", application.ProductInput{
		ExternalID: "p1",
		Title:      "Hoodie v2",
		Price:      decimal.RequireFromString("59.99"),
	}); err != nil {
		t.Fatalf("ingest product update: %v", err)
	}

	product, err := store.GetProductByExternalID(ctx, "tenant-a", "p1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.Title != "Hoodie v2" {
		t.Fatalf("expected updated title, got %q", product.Title)
	}
	if !product.Price.Equal(decimal.RequireFromString("59.99")) {
		t.Fatalf("expected updated price 59.99, got %s", product.Price)
	}
}

func TestIngestCheckout_GuestStaysUnassociated(t *testing.T) {
	ingestion, store := newIngestion(t)
	ctx := context.Background()

	if err := ingestion.IngestCheckout(ctx, "tenant-a", application.CheckoutInput{
		ExternalID:           "ch1",
		TotalPrice:           decimal.RequireFromString("19.99"),
		Currency:             "USD",
		AbandonedCheckoutURL: "https://shop.example/checkouts/ch1/recover",
	}); err != nil {
		t.Fatalf("ingest guest checkout: %v", err)
	}

	checkout, err := store.GetCheckoutByExternalID(ctx, "tenant-a", "ch1")
	if err != nil {
		t.Fatalf("get checkout: %v", err)
	}
	if checkout.CustomerID != "" {
		t.Fatalf("expected guest checkout to stay unassociated, got customer %q", checkout.CustomerID)
	}
	if checkout.CompletedAt != nil {
		t.Fatalf("expected abandoned checkout to have nil completed_at")
	}

	customers, err := store.CountCustomers(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("count customers: %v", err)
	}
	if customers != 0 {
		t.Fatalf("expected no guest customer to be synthesized, got %d", customers)
	}
}

func TestIngestCheckout_WithCustomerAndCompletion(t *testing.T) {
	ingestion, store := newIngestion(t)
	ctx := context.Background()

	completedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := ingestion.IngestCheckout(ctx, "tenant-a", application.CheckoutInput{
		ExternalID:  "ch2",
		TotalPrice:  decimal.RequireFromString("42.00"),
		Currency:    "USD",
		CompletedAt: &completedAt,
		Customer: &application.CustomerInput{
			ExternalID: "c9",
			Email:      "c9@x.com",
		},
	}); err != nil {
		t.Fatalf("ingest checkout: %v", err)
	}

	checkout, err := store.GetCheckoutByExternalID(ctx, "tenant-a", "ch2")
	if err != nil {
		t.Fatalf("get checkout: %v", err)
	}
	customer, err := store.GetCustomerByExternalID(ctx, "tenant-a", "c9")
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if customer == nil {
		t.Fatalf("expected checkout customer to be upserted")
	}
	if checkout.CustomerID != customer.ID {
		t.Fatalf("expected checkout associated with customer %s, got %q", customer.ID, checkout.CustomerID)
	}
	if checkout.CompletedAt == nil || !checkout.CompletedAt.Equal(completedAt) {
		t.Fatalf("expected completed_at %s, got %v", completedAt, checkout.CompletedAt)
	}
	// Checkouts never contribute to the derived order aggregates.
	if customer.OrdersCount != 0 || !customer.TotalSpend.Equal(decimal.Zero) {
		t.Fatalf("expected untouched aggregates, got %s / %d", customer.TotalSpend, customer.OrdersCount)
	}
}
