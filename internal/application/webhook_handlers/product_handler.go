package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-ingest-layer/internal/application"
	"shopify-ingest-layer/internal/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductHandler handles product-related webhook events.
type ProductHandler struct {
	ingestion *application.IngestionService
	logger    zerolog.Logger
}

// NewProductHandler creates a new product webhook handler.
func NewProductHandler(ingestion *application.IngestionService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		ingestion: ingestion,
		logger:    logger,
	}
}

// CanHandle returns true if this handler can process the given topic.
func (h *ProductHandler) CanHandle(topic string) bool {
	return topic == domain.TopicProductsCreate ||
		topic == domain.TopicProductsUpdate
}

// Handle materializes a product webhook event. The representative price is
// the first variant's price; a variant-less product gets a zero price.
func (h *ProductHandler) Handle(ctx context.Context, job *domain.WebhookJob) error {
	var payload productPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return domain.Permanent(fmt.Errorf("failed to parse product webhook payload: %w", err))
	}

	price := decimal.Zero
	if len(payload.Variants) > 0 {
		price = payload.Variants[0].Price
	}

	h.logger.Info().
		Str("topic", job.Topic).
		Str("tenantId", job.TenantID).
		Str("productExternalId", string(payload.ID)).
		Str("title", payload.Title).
		Msg("Processing product webhook event")

	return h.ingestion.IngestProduct(ctx, job.TenantID, application.ProductInput{
		ExternalID: string(payload.ID),
		Title:      payload.Title,
		Price:      price,
	})
}
