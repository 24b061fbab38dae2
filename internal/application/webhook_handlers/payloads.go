package webhook_handlers

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ExternalID accepts the upstream platform's entity ids, which arrive as
// JSON numbers for some resources and strings for others. The id is opaque
// to this system, so both decode to the same string form.
type ExternalID string

// UnmarshalJSON decodes a JSON string or number into an ExternalID.
func (e *ExternalID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = ExternalID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*e = ExternalID(n.String())
	return nil
}

// customerPayload is the customer reference embedded in order and checkout
// payloads.
type customerPayload struct {
	ID        ExternalID `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
}

// orderPayload is the subset of an order webhook body this system consumes.
type orderPayload struct {
	ID         ExternalID       `json:"id"`
	Name       string           `json:"name"`
	TotalPrice decimal.Decimal  `json:"total_price"`
	Currency   string           `json:"currency"`
	Customer   *customerPayload `json:"customer"`
}

// productPayload is the subset of a product webhook body this system
// consumes. The representative price is the first variant's price.
type productPayload struct {
	ID       ExternalID `json:"id"`
	Title    string     `json:"title"`
	Variants []struct {
		Price decimal.Decimal `json:"price"`
	} `json:"variants"`
}

// checkoutPayload is the subset of a checkout webhook body this system
// consumes.
type checkoutPayload struct {
	ID                   ExternalID       `json:"id"`
	TotalPrice           decimal.Decimal  `json:"total_price"`
	Currency             string           `json:"currency"`
	AbandonedCheckoutURL string           `json:"abandoned_checkout_url"`
	CompletedAt          *time.Time       `json:"completed_at"`
	Customer             *customerPayload `json:"customer"`
}
