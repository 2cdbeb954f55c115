package payment

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"shopmesh/contract"
)

// FakeGateway is an in-process gateway for local runs without gateway
// credentials. Created intents start in requires_payment_method and are
// never charged.
type FakeGateway struct {
	mu      sync.RWMutex
	intents map[string]contract.PaymentIntent
}

// NewFakeGateway constructs an empty fake gateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{intents: make(map[string]contract.PaymentIntent)}
}

func (g *FakeGateway) CreateIntent(_ context.Context, in contract.CreateIntentInput) (*contract.PaymentIntent, error) {
	if in.AmountCents <= 0 || strings.TrimSpace(in.Currency) == "" {
		return nil, &APIError{
			StatusCode: http.StatusBadRequest,
			Type:       "invalid_request_error",
			Message:    "amount and currency are required",
		}
	}

	id := "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
	intent := contract.PaymentIntent{
		ID:            id,
		Status:        "requires_payment_method",
		AmountCents:   in.AmountCents,
		Currency:      strings.ToLower(in.Currency),
		CustomerEmail: in.CustomerEmail,
		ClientSecret:  fmt.Sprintf("%s_secret_%s", id, uuid.NewString()[:8]),
	}

	g.mu.Lock()
	g.intents[id] = intent
	g.mu.Unlock()

	return &intent, nil
}

func (g *FakeGateway) IntentByID(_ context.Context, intentID string) (*contract.PaymentIntent, error) {
	g.mu.RLock()
	intent, ok := g.intents[intentID]
	g.mu.RUnlock()
	if !ok {
		return nil, &APIError{
			StatusCode: http.StatusNotFound,
			Type:       "invalid_request_error",
			Code:       "resource_missing",
			Message:    fmt.Sprintf("no such payment_intent: %s", intentID),
		}
	}
	return &intent, nil
}

var (
	_ contract.PaymentGateway = (*Client)(nil)
	_ contract.PaymentGateway = (*FakeGateway)(nil)
)
