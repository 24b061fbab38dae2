package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-ingest-layer/internal/application"
	"shopify-ingest-layer/internal/domain"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related webhook events.
type OrderHandler struct {
	ingestion *application.IngestionService
	logger    zerolog.Logger
}

// NewOrderHandler creates a new order webhook handler.
func NewOrderHandler(ingestion *application.IngestionService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		ingestion: ingestion,
		logger:    logger,
	}
}

// CanHandle returns true if this handler can process the given topic.
func (h *OrderHandler) CanHandle(topic string) bool {
	return topic == domain.TopicOrdersCreate ||
		topic == domain.TopicOrdersUpdated
}

// Handle materializes an order webhook event.
func (h *OrderHandler) Handle(ctx context.Context, job *domain.WebhookJob) error {
	var payload orderPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		// A payload that does not parse now never will; retrying is noise.
		return domain.Permanent(fmt.Errorf("failed to parse order webhook payload: %w", err))
	}

	input := application.OrderInput{
		ExternalID: string(payload.ID),
		Number:     payload.Name,
		TotalPrice: payload.TotalPrice,
		Currency:   payload.Currency,
	}
	if payload.Customer != nil {
		input.Customer = &application.CustomerInput{
			ExternalID: string(payload.Customer.ID),
			Email:      payload.Customer.Email,
			FirstName:  payload.Customer.FirstName,
			LastName:   payload.Customer.LastName,
		}
	}

	h.logger.Info().
		Str("topic", job.Topic).
		Str("tenantId", job.TenantID).
		Str("orderExternalId", input.ExternalID).
		Str("totalPrice", input.TotalPrice.String()).
		Msg("Processing order webhook event")

	return h.ingestion.IngestOrder(ctx, job.TenantID, input)
}
