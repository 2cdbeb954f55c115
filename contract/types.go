package contract

import "time"

// ProductRecord is one row of the vendor catalog.
type ProductRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
}

// InventoryRecord reports stock for one product.
type InventoryRecord struct {
	ProductName string `json:"product_name"`
	Status      string `json:"status"`
	Quantity    int    `json:"quantity"`
}

// ShippingEstimateRecord carries the standard and express options quoted for
// one product.
type ShippingEstimateRecord struct {
	ProductName  string `json:"product_name"`
	StandardDays string `json:"standard_days"`
	StandardCost string `json:"standard_cost"`
	ExpressDays  string `json:"express_days"`
	ExpressCost  string `json:"express_cost"`
}

// TrackingRecord is the last known state of one shipment.
type TrackingRecord struct {
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status"`
	LastLocation   string `json:"last_location"`
	ETA            string `json:"eta"`
}

// PaymentRecord mirrors a gateway payment intent in the local store. Rows are
// upserted by intent id; on conflict only the status is overwritten.
type PaymentRecord struct {
	IntentID      string    `json:"intent_id"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	CustomerEmail string    `json:"customer_email"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// PaymentIntent is the gateway-side view of a payment.
type PaymentIntent struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email"`
	ClientSecret  string `json:"client_secret"`
}

// CreateIntentInput is the request to open a new payment intent.
type CreateIntentInput struct {
	AmountCents   int64
	Currency      string
	CustomerEmail string
}
