package main

import (
	"context"
	"os"

	"shopify-ingest-layer/internal/application"
	"shopify-ingest-layer/internal/infrastructure/repository"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Seeds a demo tenant with a handful of customers, orders, a product and a
// checkout. Orders are driven through the ingestion service so the derived
// customer totals come out of the same recompute path production uses.
func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()

	db, err := repository.OpenDB(databaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := repository.EnsureSchema(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	tenantService := application.NewTenantService(repository.NewBunTenantRepository(db), logger)
	ingestionService := application.NewIngestionService(repository.NewBunStore(db), logger)

	tenant, err := tenantService.Onboard(ctx, application.OnboardTenantInput{
		Name:          "Demo Store",
		ShopDomain:    "demo.myshopify.com",
		OwnerEmail:    "demo@example.com",
		WebhookSecret: os.Getenv("SEED_WEBHOOK_SECRET"),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to onboard demo tenant")
	}
	logger.Info().
		Str("tenantId", tenant.ID).
		Str("shopDomain", tenant.ShopDomain).
		Msg("Seeded tenant")

	orders := []application.OrderInput{
		{
			ExternalID: "5001",
			Number:     "#1001",
			TotalPrice: decimal.RequireFromString("100.00"),
			Currency:   "USD",
			Customer: &application.CustomerInput{
				ExternalID: "cust_1",
				Email:      "alice@example.com",
				FirstName:  "Alice",
				LastName:   "Wonderland",
			},
		},
		{
			ExternalID: "5002",
			Number:     "#1002",
			TotalPrice: decimal.RequireFromString("50.00"),
			Currency:   "USD",
			Customer: &application.CustomerInput{
				ExternalID: "cust_1",
				Email:      "alice@example.com",
				FirstName:  "Alice",
				LastName:   "Wonderland",
			},
		},
		{
			ExternalID: "5003",
			Number:     "#1003",
			TotalPrice: decimal.RequireFromString("75.50"),
			Currency:   "USD",
			Customer: &application.CustomerInput{
				ExternalID: "cust_2",
				Email:      "bob@example.com",
				FirstName:  "Bob",
				LastName:   "Builder",
			},
		},
	}
	for _, order := range orders {
		if err := ingestionService.IngestOrder(ctx, tenant.ID, order); err != nil {
			logger.Fatal().Err(err).Str("orderExternalId", order.ExternalID).Msg("Failed to seed order")
		}
	}

	if err := ingestionService.IngestProduct(ctx, tenant.ID, application.ProductInput{
		ExternalID: "9001",
		Title:      "Demo Hoodie",
		Price:      decimal.RequireFromString("49.99"),
	}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed product")
	}

	if err := ingestionService.IngestCheckout(ctx, tenant.ID, application.CheckoutInput{
		ExternalID:           "7001",
		TotalPrice:           decimal.RequireFromString("49.99"),
		Currency:             "USD",
		AbandonedCheckoutURL: "https://demo.myshopify.com/checkouts/7001/recover",
	}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed checkout")
	}

	logger.Info().Msg("Seeding complete")
}
