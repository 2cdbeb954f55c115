package contract

import "context"

// CatalogStore looks up catalog rows. Lookups are case-insensitive on the
// product name and return ErrNotFound when nothing matches.
type CatalogStore interface {
	ProductByName(ctx context.Context, name string) (*ProductRecord, error)
}

// InventoryStore looks up stock rows by product name.
type InventoryStore interface {
	InventoryByProduct(ctx context.Context, productName string) (*InventoryRecord, error)
}

// ShippingStore looks up shipping estimates and tracking state.
type ShippingStore interface {
	EstimateByProduct(ctx context.Context, productName string) (*ShippingEstimateRecord, error)
	TrackingByNumber(ctx context.Context, trackingNumber string) (*TrackingRecord, error)
}

// PaymentStore persists gateway payment intents locally. UpsertPayment keyed
// by intent id overwrites only the status on conflict.
type PaymentStore interface {
	UpsertPayment(ctx context.Context, rec *PaymentRecord) error
	PaymentByIntent(ctx context.Context, intentID string) (*PaymentRecord, error)
}

// PaymentGateway is the external payment processor.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, in CreateIntentInput) (*PaymentIntent, error)
	IntentByID(ctx context.Context, intentID string) (*PaymentIntent, error)
}
