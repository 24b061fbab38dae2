package application

import (
	"context"
	"fmt"
	"time"

	"shopify-ingest-layer/internal/domain"
	"shopify-ingest-layer/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// IngestionService materializes webhook payloads into per-tenant aggregate
// records. Each Ingest* call executes as a single atomic transaction, so a
// job that fails mid-way leaves no partial writes behind and is safe for
// the queue to redeliver.
type IngestionService struct {
	store  ports.Store
	logger zerolog.Logger
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(store ports.Store, logger zerolog.Logger) *IngestionService {
	return &IngestionService{
		store:  store,
		logger: logger,
	}
}

// CustomerInput is the customer reference carried by order and checkout
// payloads.
type CustomerInput struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
}

// OrderInput is a parsed order webhook payload.
type OrderInput struct {
	ExternalID string
	Number     string
	TotalPrice decimal.Decimal
	Currency   string
	Customer   *CustomerInput
}

// ProductInput is a parsed product webhook payload.
type ProductInput struct {
	ExternalID string
	Title      string
	Price      decimal.Decimal
}

// CheckoutInput is a parsed checkout webhook payload.
type CheckoutInput struct {
	ExternalID           string
	TotalPrice           decimal.Decimal
	Currency             string
	AbandonedCheckoutURL string
	CompletedAt          *time.Time
	Customer             *CustomerInput
}

// IngestOrder upserts the order's customer, upserts the order, and
// recomputes the customer's derived totals, all within one transaction.
//
// The totals are recomputed from the full order set rather than
// incremented: webhook delivery is at-least-once, and an increment applied
// twice corrupts the aggregate while a recompute stays correct. Orders
// without a customer reference are dropped without retry; orders are
// modeled as always customer-owned.
func (s *IngestionService) IngestOrder(ctx context.Context, tenantID string, input OrderInput) error {
	if input.Customer == nil || input.Customer.ExternalID == "" {
		s.logger.Warn().
			Str("tenantId", tenantID).
			Str("orderExternalId", input.ExternalID).
			Msg("Order has no customer reference, dropping")
		return nil
	}

	return s.store.InTx(ctx, func(ctx context.Context, tx ports.StoreTx) error {
		customer, err := tx.UpsertCustomer(ctx, &domain.Customer{
			TenantID:   tenantID,
			ExternalID: input.Customer.ExternalID,
			Email:      input.Customer.Email,
			FirstName:  input.Customer.FirstName,
			LastName:   input.Customer.LastName,
		})
		if err != nil {
			return fmt.Errorf("failed to materialize customer: %w", err)
		}

		_, err = tx.UpsertOrder(ctx, &domain.Order{
			TenantID:    tenantID,
			ExternalID:  input.ExternalID,
			CustomerID:  customer.ID,
			OrderNumber: input.Number,
			TotalPrice:  input.TotalPrice,
			Currency:    input.Currency,
		})
		if err != nil {
			return fmt.Errorf("failed to materialize order: %w", err)
		}

		if err := tx.RecomputeCustomerAggregates(ctx, tenantID, customer.ID); err != nil {
			return fmt.Errorf("failed to recompute customer aggregates: %w", err)
		}
		return nil
	})
}

// IngestProduct upserts a product. Products carry no derived fields, so no
// aggregate recompute is needed.
func (s *IngestionService) IngestProduct(ctx context.Context, tenantID string, input ProductInput) error {
	return s.store.InTx(ctx, func(ctx context.Context, tx ports.StoreTx) error {
		_, err := tx.UpsertProduct(ctx, &domain.Product{
			TenantID:   tenantID,
			ExternalID: input.ExternalID,
			Title:      input.Title,
			Price:      input.Price,
		})
		if err != nil {
			return fmt.Errorf("failed to materialize product: %w", err)
		}
		return nil
	})
}

// IngestCheckout upserts a checkout. The customer association is recorded
// only when the payload carries one; guest checkouts stay unassociated.
func (s *IngestionService) IngestCheckout(ctx context.Context, tenantID string, input CheckoutInput) error {
	return s.store.InTx(ctx, func(ctx context.Context, tx ports.StoreTx) error {
		checkout := &domain.Checkout{
			TenantID:             tenantID,
			ExternalID:           input.ExternalID,
			TotalPrice:           input.TotalPrice,
			Currency:             input.Currency,
			AbandonedCheckoutURL: input.AbandonedCheckoutURL,
			CompletedAt:          input.CompletedAt,
		}
		if input.Customer != nil && input.Customer.ExternalID != "" {
			customer, err := tx.UpsertCustomer(ctx, &domain.Customer{
				TenantID:   tenantID,
				ExternalID: input.Customer.ExternalID,
				Email:      input.Customer.Email,
				FirstName:  input.Customer.FirstName,
				LastName:   input.Customer.LastName,
			})
			if err != nil {
				return fmt.Errorf("failed to materialize checkout customer: %w", err)
			}
			checkout.CustomerID = customer.ID
		}

		if _, err := tx.UpsertCheckout(ctx, checkout); err != nil {
			return fmt.Errorf("failed to materialize checkout: %w", err)
		}
		return nil
	})
}
