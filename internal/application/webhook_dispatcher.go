package application

import (
	"context"

	"shopify-ingest-layer/internal/domain"

	"github.com/rs/zerolog"
)

// WebhookHandler processes webhook jobs for the topics it claims.
type WebhookHandler interface {
	// CanHandle returns true if this handler can process the given topic.
	CanHandle(topic string) bool

	// Handle materializes the job's payload. A plain error triggers a
	// queue retry; an error wrapped with domain.Permanent does not.
	Handle(ctx context.Context, job *domain.WebhookJob) error
}

// WebhookDispatcher routes a webhook job to the handler claiming its topic.
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates a new webhook dispatcher.
func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		logger: logger,
	}
}

// RegisterHandler adds a handler to the dispatch chain.
func (d *WebhookDispatcher) RegisterHandler(handler WebhookHandler) {
	d.handlers = append(d.handlers, handler)
}

// Dispatch delivers the job to the first handler claiming its topic.
// Unknown topics are logged and acknowledged without action; an unknown
// topic is not a failure worth retrying.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, job *domain.WebhookJob) error {
	for _, handler := range d.handlers {
		if handler.CanHandle(job.Topic) {
			return handler.Handle(ctx, job)
		}
	}

	d.logger.Warn().
		Str("topic", job.Topic).
		Str("tenantId", job.TenantID).
		Str("jobId", job.ID).
		Msg("No handler registered for webhook topic, acknowledging")
	return nil
}
