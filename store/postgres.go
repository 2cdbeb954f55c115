// Package store persists the domain records behind the agent tools: catalog
// products, inventory, shipping estimates, tracking, and payments. The
// Postgres implementation rides on bun; an in-memory twin with identical
// semantics backs demos and tests.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"shopmesh/contract"
	"shopmesh/retry"
)

// Config configures the Postgres connection.
type Config struct {
	DSN string `envconfig:"DATABASE_URL"`
}

// NewDB opens a bun handle on Postgres. Connections are pooled by
// database/sql and acquired per query, so no shared mutable connection state
// crosses concurrent requests.
func NewDB(cfg Config) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL is not set", contract.ErrValidation)
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// Postgres implements every domain repository on a bun handle. Each query is
// wrapped by the persistence retry policy; not-found is terminal and never
// retried.
type Postgres struct {
	db     *bun.DB
	policy retry.Policy
}

// NewPostgres wraps an open bun handle.
func NewPostgres(db *bun.DB) *Postgres {
	return &Postgres{db: db, policy: retry.Persistence(transientPersistence)}
}

func transientPersistence(err error) bool {
	return errors.Is(err, contract.ErrPersistence)
}

func (s *Postgres) ProductByName(ctx context.Context, name string) (*contract.ProductRecord, error) {
	return retry.Do(ctx, s.policy, func(ctx context.Context) (*contract.ProductRecord, error) {
		var row productRow
		err := s.db.NewSelect().
			Model(&row).
			Where("lower(name) = lower(?)", name).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, classifyScan(err, "product")
		}
		return &contract.ProductRecord{
			Name:        row.Name,
			Description: row.Description,
			PriceCents:  row.PriceCents,
		}, nil
	})
}

func (s *Postgres) InventoryByProduct(ctx context.Context, productName string) (*contract.InventoryRecord, error) {
	return retry.Do(ctx, s.policy, func(ctx context.Context) (*contract.InventoryRecord, error) {
		var row inventoryRow
		err := s.db.NewSelect().
			Model(&row).
			Where("lower(product_name) = lower(?)", productName).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, classifyScan(err, "inventory")
		}
		return &contract.InventoryRecord{
			ProductName: row.ProductName,
			Status:      row.Status,
			Quantity:    row.Quantity,
		}, nil
	})
}

func (s *Postgres) EstimateByProduct(ctx context.Context, productName string) (*contract.ShippingEstimateRecord, error) {
	return retry.Do(ctx, s.policy, func(ctx context.Context) (*contract.ShippingEstimateRecord, error) {
		var row shippingEstimateRow
		err := s.db.NewSelect().
			Model(&row).
			Where("lower(product_name) = lower(?)", productName).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, classifyScan(err, "shipping estimate")
		}
		return &contract.ShippingEstimateRecord{
			ProductName:  row.ProductName,
			StandardDays: row.StandardDays,
			StandardCost: row.StandardCost,
			ExpressDays:  row.ExpressDays,
			ExpressCost:  row.ExpressCost,
		}, nil
	})
}

func (s *Postgres) TrackingByNumber(ctx context.Context, trackingNumber string) (*contract.TrackingRecord, error) {
	return retry.Do(ctx, s.policy, func(ctx context.Context) (*contract.TrackingRecord, error) {
		var row trackingRow
		err := s.db.NewSelect().
			Model(&row).
			Where("tracking_number = ?", trackingNumber).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, classifyScan(err, "tracking")
		}
		return &contract.TrackingRecord{
			TrackingNumber: row.TrackingNumber,
			Status:         row.Status,
			LastLocation:   row.LastLocation,
			ETA:            row.ETA,
		}, nil
	})
}

// UpsertPayment inserts the payment keyed by intent id. On conflict only the
// status is overwritten; the remaining columns keep the values of the most
// recent insert.
func (s *Postgres) UpsertPayment(ctx context.Context, rec *contract.PaymentRecord) error {
	if rec == nil || strings.TrimSpace(rec.IntentID) == "" {
		return fmt.Errorf("%w: payment intent id is required", contract.ErrValidation)
	}
	_, err := retry.Do(ctx, s.policy, func(ctx context.Context) (struct{}, error) {
		row := paymentRow{
			IntentID:      rec.IntentID,
			AmountCents:   rec.AmountCents,
			Currency:      rec.Currency,
			CustomerEmail: rec.CustomerEmail,
			Status:        rec.Status,
			CreatedAt:     rec.CreatedAt,
		}
		_, err := s.db.NewInsert().
			Model(&row).
			On("CONFLICT (stripe_payment_intent_id) DO UPDATE").
			Set("status = EXCLUDED.status").
			Exec(ctx)
		if err != nil {
			return struct{}{}, fmt.Errorf("%w: upsert payment: %v", contract.ErrPersistence, err)
		}
		return struct{}{}, nil
	})
	return err
}

func (s *Postgres) PaymentByIntent(ctx context.Context, intentID string) (*contract.PaymentRecord, error) {
	return retry.Do(ctx, s.policy, func(ctx context.Context) (*contract.PaymentRecord, error) {
		var row paymentRow
		err := s.db.NewSelect().
			Model(&row).
			Where("stripe_payment_intent_id = ?", intentID).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, classifyScan(err, "payment")
		}
		return &contract.PaymentRecord{
			IntentID:      row.IntentID,
			AmountCents:   row.AmountCents,
			Currency:      row.Currency,
			CustomerEmail: row.CustomerEmail,
			Status:        row.Status,
			CreatedAt:     row.CreatedAt,
		}, nil
	})
}

func classifyScan(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", contract.ErrNotFound, entity)
	}
	return fmt.Errorf("%w: query %s: %v", contract.ErrPersistence, entity, err)
}
