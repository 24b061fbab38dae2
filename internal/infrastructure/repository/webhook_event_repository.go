package repository

import (
	"context"
	"fmt"
	"time"

	"shopify-ingest-layer/internal/domain"
	"shopify-ingest-layer/internal/infrastructure/repository/entity"
	"shopify-ingest-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoWebhookEventRepository implements the webhook audit log using
// MongoDB. Events are append-only documents in the webhook_events
// collection.
type MongoWebhookEventRepository struct {
	collection *mongo.Collection
}

// NewMongoWebhookEventRepository creates a new MongoDB webhook audit log.
func NewMongoWebhookEventRepository(db *mongo.Database) ports.WebhookAuditLog {
	return &MongoWebhookEventRepository{
		collection: db.Collection("webhook_events"),
	}
}

// Record appends an accepted webhook event to the audit log.
func (r *MongoWebhookEventRepository) Record(ctx context.Context, event *domain.WebhookEvent) error {
	doc := entity.MongoWebhookEventDocFromDomain(event)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to log webhook event: %w", err)
	}
	return nil
}

// NoopWebhookEventRepository discards audit events. Used when no MongoDB
// connection is configured.
type NoopWebhookEventRepository struct{}

// NewNoopWebhookEventRepository creates an audit log that drops everything.
func NewNoopWebhookEventRepository() ports.WebhookAuditLog {
	return &NoopWebhookEventRepository{}
}

// Record discards the event.
func (r *NoopWebhookEventRepository) Record(ctx context.Context, event *domain.WebhookEvent) error {
	return nil
}
