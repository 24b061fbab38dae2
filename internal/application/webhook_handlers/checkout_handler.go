package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-ingest-layer/internal/application"
	"shopify-ingest-layer/internal/domain"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout-related webhook events.
type CheckoutHandler struct {
	ingestion *application.IngestionService
	logger    zerolog.Logger
}

// NewCheckoutHandler creates a new checkout webhook handler.
func NewCheckoutHandler(ingestion *application.IngestionService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		ingestion: ingestion,
		logger:    logger,
	}
}

// CanHandle returns true if this handler can process the given topic.
func (h *CheckoutHandler) CanHandle(topic string) bool {
	return topic == domain.TopicCheckoutsCreate ||
		topic == domain.TopicCheckoutsUpdate
}

// Handle materializes a checkout webhook event. Guest checkouts carry no
// customer object and stay unassociated.
func (h *CheckoutHandler) Handle(ctx context.Context, job *domain.WebhookJob) error {
	var payload checkoutPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return domain.Permanent(fmt.Errorf("failed to parse checkout webhook payload: %w", err))
	}

	input := application.CheckoutInput{
		ExternalID:           string(payload.ID),
		TotalPrice:           payload.TotalPrice,
		Currency:             payload.Currency,
		AbandonedCheckoutURL: payload.AbandonedCheckoutURL,
		CompletedAt:          payload.CompletedAt,
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
		Str("checkoutExternalId", input.ExternalID).
		Msg("Processing checkout webhook event")

	return h.ingestion.IngestCheckout(ctx, job.TenantID, input)
}
