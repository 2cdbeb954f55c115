package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"shopmesh/contract"
)

// Memory is a volatile implementation of every domain repository. It keeps
// the same contract as Postgres, including the status-only payment upsert,
// and is safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	products  map[string]contract.ProductRecord
	inventory map[string]contract.InventoryRecord
	estimates map[string]contract.ShippingEstimateRecord
	tracking  map[string]contract.TrackingRecord
	payments  map[string]contract.PaymentRecord
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		products:  make(map[string]contract.ProductRecord),
		inventory: make(map[string]contract.InventoryRecord),
		estimates: make(map[string]contract.ShippingEstimateRecord),
		tracking:  make(map[string]contract.TrackingRecord),
		payments:  make(map[string]contract.PaymentRecord),
	}
}

func (m *Memory) ProductByName(_ context.Context, name string) (*contract.ProductRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.products[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: product", contract.ErrNotFound)
	}
	return &rec, nil
}

func (m *Memory) InventoryByProduct(_ context.Context, productName string) (*contract.InventoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.inventory[strings.ToLower(productName)]
	if !ok {
		return nil, fmt.Errorf("%w: inventory", contract.ErrNotFound)
	}
	return &rec, nil
}

func (m *Memory) EstimateByProduct(_ context.Context, productName string) (*contract.ShippingEstimateRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.estimates[strings.ToLower(productName)]
	if !ok {
		return nil, fmt.Errorf("%w: shipping estimate", contract.ErrNotFound)
	}
	return &rec, nil
}

func (m *Memory) TrackingByNumber(_ context.Context, trackingNumber string) (*contract.TrackingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.tracking[trackingNumber]
	if !ok {
		return nil, fmt.Errorf("%w: tracking", contract.ErrNotFound)
	}
	return &rec, nil
}

// UpsertPayment inserts the record keyed by intent id. When the id already
// exists only the status is overwritten, matching the Postgres conflict
// clause.
func (m *Memory) UpsertPayment(_ context.Context, rec *contract.PaymentRecord) error {
	if rec == nil || strings.TrimSpace(rec.IntentID) == "" {
		return fmt.Errorf("%w: payment intent id is required", contract.ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.payments[rec.IntentID]; ok {
		existing.Status = rec.Status
		m.payments[rec.IntentID] = existing
		return nil
	}
	stored := *rec
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	m.payments[rec.IntentID] = stored
	return nil
}

func (m *Memory) PaymentByIntent(_ context.Context, intentID string) (*contract.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.payments[intentID]
	if !ok {
		return nil, fmt.Errorf("%w: payment", contract.ErrNotFound)
	}
	return &rec, nil
}

// AddProduct registers a catalog row, keyed case-insensitively by name.
func (m *Memory) AddProduct(rec contract.ProductRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[strings.ToLower(rec.Name)] = rec
}

// AddInventory registers a stock row.
func (m *Memory) AddInventory(rec contract.InventoryRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventory[strings.ToLower(rec.ProductName)] = rec
}

// AddEstimate registers a shipping estimate row.
func (m *Memory) AddEstimate(rec contract.ShippingEstimateRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.estimates[strings.ToLower(rec.ProductName)] = rec
}

// AddTracking registers a tracking row.
func (m *Memory) AddTracking(rec contract.TrackingRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracking[rec.TrackingNumber] = rec
}

// SeedDemo loads the demo data set used by local bring-up.
func (m *Memory) SeedDemo() {
	m.AddProduct(contract.ProductRecord{
		Name:        "iPhone 15 Pro",
		Description: "Apple flagship smartphone with titanium frame and A17 Pro chip.",
		PriceCents:  99900,
	})
	m.AddProduct(contract.ProductRecord{
		Name:        "MacBook Pro 14",
		Description: "14-inch MacBook Pro with M3 Pro chip and Liquid Retina XDR display.",
		PriceCents:  199900,
	})
	m.AddInventory(contract.InventoryRecord{ProductName: "iPhone 15 Pro", Status: "in stock", Quantity: 42})
	m.AddInventory(contract.InventoryRecord{ProductName: "MacBook Pro 14", Status: "low stock", Quantity: 3})
	m.AddEstimate(contract.ShippingEstimateRecord{
		ProductName:  "iPhone 15 Pro",
		StandardDays: "3-5 business days",
		StandardCost: "$5.99",
		ExpressDays:  "1-2 business days",
		ExpressCost:  "$19.99",
	})
	m.AddEstimate(contract.ShippingEstimateRecord{
		ProductName:  "MacBook Pro 14",
		StandardDays: "5-7 business days",
		StandardCost: "$9.99",
		ExpressDays:  "2-3 business days",
		ExpressCost:  "$29.99",
	})
	m.AddTracking(contract.TrackingRecord{
		TrackingNumber: "1Z999",
		Status:         "in transit",
		LastLocation:   "Louisville, KY",
		ETA:            "2 days",
	})
}
