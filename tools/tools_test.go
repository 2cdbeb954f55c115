package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"shopmesh/a2a"
	"shopmesh/contract"
	"shopmesh/store"
)

// degradedStore fails every repository call the way an unreachable database
// would.
type degradedStore struct{}

func (degradedStore) failure() error {
	return fmt.Errorf("%w: connection refused", contract.ErrPersistence)
}

func (d degradedStore) ProductByName(context.Context, string) (*contract.ProductRecord, error) {
	return nil, d.failure()
}

func (d degradedStore) InventoryByProduct(context.Context, string) (*contract.InventoryRecord, error) {
	return nil, d.failure()
}

func (d degradedStore) EstimateByProduct(context.Context, string) (*contract.ShippingEstimateRecord, error) {
	return nil, d.failure()
}

func (d degradedStore) TrackingByNumber(context.Context, string) (*contract.TrackingRecord, error) {
	return nil, d.failure()
}

func (d degradedStore) UpsertPayment(context.Context, *contract.PaymentRecord) error {
	return d.failure()
}

func (d degradedStore) PaymentByIntent(context.Context, string) (*contract.PaymentRecord, error) {
	return nil, d.failure()
}

func seededRepos() *store.Memory {
	m := store.NewMemory()
	m.SeedDemo()
	return m
}

func runTool(t *testing.T, tool Tool, args map[string]string) Result {
	t.Helper()
	return tool.Run(context.Background(), args)
}

func TestProductInfoFormatsRecord(t *testing.T) {
	t.Parallel()

	tool := NewProductInfoTool(seededRepos())
	res := runTool(t, tool, map[string]string{"product_name": "iPhone 15 Pro"})

	want := "Product: iPhone 15 Pro\n" +
		"Description: Apple flagship smartphone with titanium frame and A17 Pro chip.\n" +
		"Price: $999.00"
	if res.Text != want {
		t.Fatalf("text = %q, want %q", res.Text, want)
	}
	if res.Advisory != nil {
		t.Fatalf("advisory = %v, want nil", res.Advisory)
	}
}

func TestProductInfoNotFound(t *testing.T) {
	t.Parallel()

	tool := NewProductInfoTool(seededRepos())
	res := runTool(t, tool, map[string]string{"product_name": "Foo"})
	if res.Text != "No product found for 'Foo'." {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestProductInfoDegradedStore(t *testing.T) {
	t.Parallel()

	tool := NewProductInfoTool(degradedStore{})
	res := runTool(t, tool, map[string]string{"product_name": "iPhone 15 Pro"})
	if res.Text != dbErrorText {
		t.Fatalf("text = %q, want %q", res.Text, dbErrorText)
	}
}

func TestInventoryInfoEchoesRequestedName(t *testing.T) {
	t.Parallel()

	tool := NewInventoryInfoTool(seededRepos())
	res := runTool(t, tool, map[string]string{"product_name": "macbook pro 14"})

	// The reply repeats the caller's spelling, not the stored one.
	want := "macbook pro 14 is low stock with 3 units available."
	if res.Text != want {
		t.Fatalf("text = %q, want %q", res.Text, want)
	}
}

func TestInventoryInfoNotFound(t *testing.T) {
	t.Parallel()

	tool := NewInventoryInfoTool(seededRepos())
	res := runTool(t, tool, map[string]string{"product_name": "Foo"})
	if res.Text != "No inventory information found for 'Foo'." {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestInventoryInfoDegradedStore(t *testing.T) {
	t.Parallel()

	tool := NewInventoryInfoTool(degradedStore{})
	res := runTool(t, tool, map[string]string{"product_name": "iPhone 15 Pro"})
	if res.Text != dbErrorText {
		t.Fatalf("text = %q, want %q", res.Text, dbErrorText)
	}
}

func TestShippingEstimateFormatsRecord(t *testing.T) {
	t.Parallel()

	tool := NewShippingEstimateTool(seededRepos())
	res := runTool(t, tool, map[string]string{"product_name": "iPhone 15 Pro", "destination": "Bangkok"})

	want := "Standard: 3-5 business days ($5.99), Express: 1-2 business days ($19.99). Destination: Bangkok."
	if res.Text != want {
		t.Fatalf("text = %q, want %q", res.Text, want)
	}
}

func TestShippingEstimateDefaultsDestination(t *testing.T) {
	t.Parallel()

	tool := NewShippingEstimateTool(seededRepos())
	res := runTool(t, tool, map[string]string{"product_name": "iPhone 15 Pro"})

	want := "Standard: 3-5 business days ($5.99), Express: 1-2 business days ($19.99). Destination: unspecified."
	if res.Text != want {
		t.Fatalf("text = %q, want %q", res.Text, want)
	}
}

func TestShippingEstimateNotFound(t *testing.T) {
	t.Parallel()

	tool := NewShippingEstimateTool(seededRepos())
	res := runTool(t, tool, map[string]string{"product_name": "Foo"})
	if res.Text != "No shipping estimate found for 'Foo'." {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestTrackingInfoFormatsRecord(t *testing.T) {
	t.Parallel()

	tool := NewTrackingInfoTool(seededRepos())
	res := runTool(t, tool, map[string]string{"tracking_number": "1Z999"})

	want := "Status: in transit. Last seen in Louisville, KY. Estimated delivery: 2 days."
	if res.Text != want {
		t.Fatalf("text = %q, want %q", res.Text, want)
	}
}

func TestTrackingInfoNotFound(t *testing.T) {
	t.Parallel()

	tool := NewTrackingInfoTool(seededRepos())
	res := runTool(t, tool, map[string]string{"tracking_number": "UNKNOWN123"})
	if res.Text != "No tracking data found for tracking number 'UNKNOWN123'." {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestDispatcherRejectsUnknownOperation(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(NewProductInfoTool(seededRepos()))
	_, err := d.Handle(context.Background(), a2a.NewTask("sess", "msg", "reboot_everything", nil))
	if !errors.Is(err, contract.ErrValidation) {
		t.Fatalf("Handle() error = %v, want ErrValidation", err)
	}
}

func TestDispatcherRunsTool(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(NewProductInfoTool(seededRepos()))
	got, err := d.Handle(context.Background(), a2a.NewTask("sess", "msg", "get_product_info",
		map[string]string{"product_name": "Foo"}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got != "No product found for 'Foo'." {
		t.Fatalf("Handle() = %q", got)
	}
}

func TestDispatcherOperationsSortedByName(t *testing.T) {
	t.Parallel()

	repos := seededRepos()
	d := NewDispatcher(
		NewTrackingInfoTool(repos),
		NewShippingEstimateTool(repos),
	)
	ops := d.Operations()
	if len(ops) != 2 {
		t.Fatalf("operation count = %d, want 2", len(ops))
	}
	if ops[0].Name != "get_shipping_estimate" || ops[1].Name != "get_tracking_info" {
		t.Fatalf("operations = %+v, want sorted by name", ops)
	}
}
