package store

import (
	"context"

	"github.com/rs/zerolog/log"

	"shopmesh/contract"
)

// Repositories bundles every domain repository a store implements.
type Repositories interface {
	contract.CatalogStore
	contract.InventoryStore
	contract.ShippingStore
	contract.PaymentStore
}

var (
	_ Repositories = (*Postgres)(nil)
	_ Repositories = (*Memory)(nil)
)

// Open returns Postgres repositories when a DSN is configured, migrating the
// schema on the way up. Without a DSN it falls back to the seeded in-memory
// store so services can run locally without a database.
func Open(ctx context.Context, cfg Config) (Repositories, error) {
	if cfg.DSN == "" {
		log.Warn().Msg("DATABASE_URL not set, using seeded in-memory store")
		mem := NewMemory()
		mem.SeedDemo()
		return mem, nil
	}

	db, err := NewDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}
	return NewPostgres(db), nil
}
