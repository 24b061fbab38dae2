package entity

import (
	"time"

	"shopify-ingest-layer/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoWebhookEventDoc represents an accepted webhook in the audit log.
type MongoWebhookEventDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Topic      string             `bson:"topic"`
	ShopDomain string             `bson:"shopDomain"`
	TenantID   string             `bson:"tenantId"`
	Payload    []byte             `bson:"payload"`
	Verified   bool               `bson:"verified"`
	ReceivedAt time.Time          `bson:"receivedAt"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// MongoWebhookEventDocFromDomain converts a domain event to a document.
func MongoWebhookEventDocFromDomain(event *domain.WebhookEvent) *MongoWebhookEventDoc {
	return &MongoWebhookEventDoc{
		Topic:      event.Topic,
		ShopDomain: event.ShopDomain,
		TenantID:   event.TenantID,
		Payload:    event.Payload,
		Verified:   event.Verified,
		ReceivedAt: event.ReceivedAt,
	}
}
