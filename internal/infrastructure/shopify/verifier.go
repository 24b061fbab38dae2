package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"shopify-ingest-layer/internal/domain"
)

// WebhookVerifier validates that a webhook body was produced by the holder
// of the tenant's shared secret. Verification must run over the untouched
// raw request body bytes: re-serializing the parsed payload can change key
// order, number formatting or whitespace and break the signature even for
// a legitimate sender.
type WebhookVerifier struct {
	secret []byte
}

// NewWebhookVerifier creates a verifier bound to one tenant's secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Verify checks hmacHeader (base64-encoded HMAC-SHA256 of rawBody) against
// the expected signature. It fails closed: an empty header or secret is
// rejected, and the comparison is constant-time.
func (v *WebhookVerifier) Verify(rawBody []byte, hmacHeader string) error {
	if hmacHeader == "" || len(v.secret) == 0 {
		return domain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(hmacHeader)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// Sign computes the base64-encoded HMAC-SHA256 signature for body. Used by
// the seeder and tests to produce valid webhook requests.
func (v *WebhookVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
