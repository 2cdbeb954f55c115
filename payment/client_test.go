package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"shopmesh/contract"
	"shopmesh/retry"
)

func quickGatewayPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		Multiplier:   2,
		MaxDelay:     5 * time.Millisecond,
		Retryable:    transientGateway,
	}
}

const intentJSON = `{
	"id": "pi_123",
	"status": "requires_payment_method",
	"amount": 4999,
	"currency": "usd",
	"receipt_email": "a@example.com",
	"client_secret": "pi_123_secret_abc"
}`

func newGateway(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(
		Config{BaseURL: baseURL, SecretKey: "sk_test_123"},
		WithRetryPolicy(quickGatewayPolicy()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestCreateIntentDecodesResponse(t *testing.T) {
	t.Parallel()

	var gotAuth, gotBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		_ = r.ParseForm()
		gotBody.Store(r.PostForm.Encode())
		_, _ = w.Write([]byte(intentJSON))
	}))
	defer srv.Close()

	c := newGateway(t, srv.URL)
	intent, err := c.CreateIntent(context.Background(), contract.CreateIntentInput{
		AmountCents:   4999,
		Currency:      "USD",
		CustomerEmail: "a@example.com",
	})
	if err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}

	if intent.ID != "pi_123" || intent.Status != "requires_payment_method" {
		t.Fatalf("intent = %+v", intent)
	}
	if intent.AmountCents != 4999 || intent.Currency != "usd" {
		t.Fatalf("intent = %+v", intent)
	}
	if intent.ClientSecret != "pi_123_secret_abc" {
		t.Fatalf("client secret = %q", intent.ClientSecret)
	}
	if gotAuth.Load() != "Bearer sk_test_123" {
		t.Fatalf("authorization = %v", gotAuth.Load())
	}
	body, _ := gotBody.Load().(string)
	for _, want := range []string{"amount=4999", "currency=usd", "receipt_email=a%40example.com"} {
		if !strings.Contains(body, want) {
			t.Fatalf("form body = %q, missing %q", body, want)
		}
	}
}

func TestCreateIntentRetriesTransientGatewayErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"try again"}}`))
			return
		}
		_, _ = w.Write([]byte(intentJSON))
	}))
	defer srv.Close()

	c := newGateway(t, srv.URL)
	intent, err := c.CreateIntent(context.Background(), contract.CreateIntentInput{AmountCents: 4999, Currency: "usd"})
	if err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}
	if intent.ID != "pi_123" {
		t.Fatalf("intent id = %q", intent.ID)
	}
	if hits.Load() != 3 {
		t.Fatalf("gateway calls = %d, want 3", hits.Load())
	}
}

func TestCreateIntentDeclinedIsNotRetried(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	c := newGateway(t, srv.URL)
	_, err := c.CreateIntent(context.Background(), contract.CreateIntentInput{AmountCents: 4999, Currency: "usd"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("CreateIntent() error = %v, want *APIError", err)
	}
	if apiErr.Code != "card_declined" || apiErr.Transient() {
		t.Fatalf("apiErr = %+v", apiErr)
	}
	if hits.Load() != 1 {
		t.Fatalf("gateway calls = %d, want 1", hits.Load())
	}
}

func TestCreateIntentValidatesInput(t *testing.T) {
	t.Parallel()

	c := newGateway(t, "http://localhost:0")
	if _, err := c.CreateIntent(context.Background(), contract.CreateIntentInput{Currency: "usd"}); !errors.Is(err, contract.ErrValidation) {
		t.Fatalf("zero amount error = %v, want ErrValidation", err)
	}
	if _, err := c.CreateIntent(context.Background(), contract.CreateIntentInput{AmountCents: 100}); !errors.Is(err, contract.ErrValidation) {
		t.Fatalf("missing currency error = %v, want ErrValidation", err)
	}
}

func TestClientWithoutSecretKeyFailsBeforeNetwork(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := c.CreateIntent(context.Background(), contract.CreateIntentInput{AmountCents: 100, Currency: "usd"}); !errors.Is(err, contract.ErrValidation) {
		t.Fatalf("CreateIntent() error = %v, want ErrValidation", err)
	}
	if _, err := c.IntentByID(context.Background(), "pi_123"); !errors.Is(err, contract.ErrValidation) {
		t.Fatalf("IntentByID() error = %v, want ErrValidation", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("gateway calls = %d, want 0", hits.Load())
	}
}

func TestIntentByIDFetchesCurrentState(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payment_intents/pi_123" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(intentJSON))
	}))
	defer srv.Close()

	c := newGateway(t, srv.URL)
	intent, err := c.IntentByID(context.Background(), "pi_123")
	if err != nil {
		t.Fatalf("IntentByID() error = %v", err)
	}
	if intent.ID != "pi_123" || intent.AmountCents != 4999 {
		t.Fatalf("intent = %+v", intent)
	}
}

func TestFakeGatewayRoundTrip(t *testing.T) {
	t.Parallel()

	g := NewFakeGateway()
	created, err := g.CreateIntent(context.Background(), contract.CreateIntentInput{AmountCents: 4999, Currency: "USD"})
	if err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}
	if created.Status != "requires_payment_method" || created.Currency != "usd" {
		t.Fatalf("created = %+v", created)
	}

	got, err := g.IntentByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("IntentByID() error = %v", err)
	}
	if got.ID != created.ID || got.AmountCents != 4999 {
		t.Fatalf("got = %+v", got)
	}

	_, err = g.IntentByID(context.Background(), "pi_missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("IntentByID(missing) error = %v, want 404 *APIError", err)
	}
}
