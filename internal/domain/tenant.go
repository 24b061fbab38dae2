package domain

import "time"

// Tenant represents an independent storefront account. It is the unit of
// data isolation: every other entity is owned by exactly one tenant.
type Tenant struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ShopDomain    string    `json:"shop_domain"`
	OwnerEmail    string    `json:"owner_email"`
	WebhookSecret string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
