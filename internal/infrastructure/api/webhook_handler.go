package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"shopify-ingest-layer/internal/application"
	"shopify-ingest-layer/internal/domain"
	"shopify-ingest-layer/internal/infrastructure/metrics"
	"shopify-ingest-layer/internal/infrastructure/shopify"
	"shopify-ingest-layer/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Webhook request headers set by the upstream platform.
const (
	HeaderTopic      = "X-Shopify-Topic"
	HeaderShopDomain = "X-Shopify-Shop-Domain"
	HeaderHmac       = "X-Shopify-Hmac-SHA256"
)

// WebhookHandler is the intake gateway: it resolves the tenant, verifies
// the signature over the raw request bytes, enqueues one durable job, and
// acknowledges. It never waits on materialization; once enqueue succeeds
// the sender sees 200 regardless of what processing later does.
type WebhookHandler struct {
	tenants  *application.TenantService
	queue    ports.Queue
	auditLog ports.WebhookAuditLog
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewWebhookHandler creates a new webhook intake handler.
func NewWebhookHandler(
	tenants *application.TenantService,
	queue ports.Queue,
	auditLog ports.WebhookAuditLog,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		tenants:  tenants,
		queue:    queue,
		auditLog: auditLog,
		metrics:  m,
		logger:   logger,
	}
}

// Handle processes POST /webhooks/shopify.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	topic := r.Header.Get(HeaderTopic)
	shopDomain := r.Header.Get(HeaderShopDomain)
	hmacHeader := r.Header.Get(HeaderHmac)
	if topic == "" || shopDomain == "" || hmacHeader == "" {
		h.metrics.WebhooksRejected.WithLabelValues("missing_header").Inc()
		http.Error(w, "Missing required webhook headers", http.StatusBadRequest)
		return
	}

	tenant, err := h.tenants.Resolve(ctx, "", shopDomain)
	if errors.Is(err, domain.ErrTenantNotFound) {
		h.logger.Warn().
			Str("shopDomain", shopDomain).
			Msg("Webhook from unresolved shop domain")
		h.metrics.WebhooksRejected.WithLabelValues("unknown_tenant").Inc()
		http.Error(w, "Tenant not found", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to resolve tenant")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// The raw bytes are read exactly once and reused for both signature
	// verification and the job payload; any re-serialized form could
	// differ byte-for-byte and break the signature.
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read webhook payload")
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	verifier := shopify.NewWebhookVerifier(tenant.WebhookSecret)
	if err := verifier.Verify(payload, hmacHeader); err != nil {
		h.logger.Warn().
			Err(err).
			Str("tenantId", tenant.ID).
			Str("shopDomain", shopDomain).
			Msg("Webhook signature verification failed")
		h.metrics.WebhooksRejected.WithLabelValues("invalid_signature").Inc()
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	job := &domain.WebhookJob{
		ID:         uuid.NewString(),
		Topic:      topic,
		TenantID:   tenant.ID,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := h.queue.Enqueue(ctx, job); err != nil {
		// No retry at this layer: failing the request makes the upstream
		// sender redeliver the webhook.
		h.logger.Error().
			Err(err).
			Str("topic", topic).
			Str("tenantId", tenant.ID).
			Msg("Failed to enqueue webhook job")
		http.Error(w, "Failed to queue webhook", http.StatusInternalServerError)
		return
	}

	if err := h.auditLog.Record(ctx, &domain.WebhookEvent{
		Topic:      topic,
		ShopDomain: shopDomain,
		TenantID:   tenant.ID,
		Payload:    payload,
		Verified:   true,
		ReceivedAt: job.EnqueuedAt,
	}); err != nil {
		h.logger.Error().Err(err).Msg("Failed to log webhook event")
		// Audit logging is best-effort; the job is already queued.
	}

	h.metrics.WebhooksReceived.WithLabelValues(topic).Inc()
	h.logger.Info().
		Str("topic", topic).
		Str("tenantId", tenant.ID).
		Str("jobId", job.ID).
		Msg("Webhook accepted and queued")

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"received": "true",
	})
}
