package ports

import (
	"context"

	"shopify-ingest-layer/internal/domain"
)

// WebhookAuditLog records every accepted webhook for debugging and audit.
// Logging is best-effort at the intake gateway: a failed write is logged
// but never blocks acceptance of the webhook.
type WebhookAuditLog interface {
	Record(ctx context.Context, event *domain.WebhookEvent) error
}
