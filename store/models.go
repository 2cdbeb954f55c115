package store

import (
	"time"

	"github.com/uptrace/bun"
)

type productRow struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          int64  `bun:"id,pk,autoincrement"`
	Name        string `bun:"name,notnull"`
	Description string `bun:"description"`
	PriceCents  int64  `bun:"price_cents,notnull"`
}

type inventoryRow struct {
	bun.BaseModel `bun:"table:inventory,alias:i"`

	ID          int64  `bun:"id,pk,autoincrement"`
	ProductName string `bun:"product_name,notnull"`
	Status      string `bun:"status,notnull"`
	Quantity    int    `bun:"quantity,notnull"`
}

type shippingEstimateRow struct {
	bun.BaseModel `bun:"table:shipping_estimates,alias:se"`

	ID           int64  `bun:"id,pk,autoincrement"`
	ProductName  string `bun:"product_name,notnull"`
	StandardDays string `bun:"standard_days"`
	StandardCost string `bun:"standard_cost"`
	ExpressDays  string `bun:"express_days"`
	ExpressCost  string `bun:"express_cost"`
}

type trackingRow struct {
	bun.BaseModel `bun:"table:tracking,alias:t"`

	ID             int64  `bun:"id,pk,autoincrement"`
	TrackingNumber string `bun:"tracking_number,notnull"`
	Status         string `bun:"status"`
	LastLocation   string `bun:"last_location"`
	ETA            string `bun:"eta"`
}

type paymentRow struct {
	bun.BaseModel `bun:"table:payments,alias:pay"`

	IntentID      string    `bun:"stripe_payment_intent_id,pk"`
	AmountCents   int64     `bun:"amount_cents,notnull"`
	Currency      string    `bun:"currency,notnull"`
	CustomerEmail string    `bun:"customer_email"`
	Status        string    `bun:"status,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
