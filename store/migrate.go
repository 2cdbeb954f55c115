package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"shopmesh/contract"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		price_cents BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id BIGSERIAL PRIMARY KEY,
		product_name TEXT NOT NULL,
		status TEXT NOT NULL,
		quantity INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS shipping_estimates (
		id BIGSERIAL PRIMARY KEY,
		product_name TEXT NOT NULL,
		standard_days TEXT,
		standard_cost TEXT,
		express_days TEXT,
		express_cost TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS tracking (
		id BIGSERIAL PRIMARY KEY,
		tracking_number TEXT NOT NULL UNIQUE,
		status TEXT,
		last_location TEXT,
		eta TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		stripe_payment_intent_id TEXT PRIMARY KEY,
		amount_cents BIGINT NOT NULL,
		currency TEXT NOT NULL,
		customer_email TEXT,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate creates the domain tables if they do not exist.
func Migrate(ctx context.Context, db *bun.DB) error {
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: migrate: %v", contract.ErrPersistence, err)
		}
	}
	return nil
}
