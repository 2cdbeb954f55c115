// Package payment talks to the external payment gateway. The REST client
// follows the gateway's payment-intent API; declined and invalid-request
// errors are terminal while connector and transient gateway errors are
// retried under the gateway policy.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shopmesh/contract"
	"shopmesh/retry"
)

const maxResponseSizeBytes = 1 << 20

// Config configures the gateway client.
type Config struct {
	BaseURL   string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.stripe.com"`
	SecretKey string        `envconfig:"SECRET_KEY" split_words:"true"`
	Timeout   time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
}

// APIError is a structured failure reported by the gateway itself.
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway error status=%d type=%s code=%s: %s", e.StatusCode, e.Type, e.Code, e.Message)
}

// Transient reports whether the gateway failure is worth retrying. Declined
// cards and invalid requests are final.
func (e *APIError) Transient() bool {
	switch e.Type {
	case "api_connection_error", "api_error", "rate_limit_error":
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryPolicy replaces the gateway retry policy.
func WithRetryPolicy(p retry.Policy) ClientOption {
	return func(c *Client) {
		c.policy = p
	}
}

// Client is the REST payment gateway client.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	policy     retry.Policy
}

// NewClient validates the configuration and returns a gateway client. The
// secret key may be empty; calls then fail immediately with a configuration
// error instead of reaching the network.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("gateway base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid gateway base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:    baseURL,
		secretKey:  strings.TrimSpace(cfg.SecretKey),
		httpClient: &http.Client{Timeout: timeout},
		policy:     retry.Gateway(transientGateway),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// transientGateway marks connector failures and transient gateway errors as
// retryable. Everything else, including missing configuration, is final.
func transientGateway(err error) bool {
	if errors.Is(err, contract.ErrConnectivity) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	return false
}

// CreateIntent opens a payment intent with automatic payment methods.
func (c *Client) CreateIntent(ctx context.Context, in contract.CreateIntentInput) (*contract.PaymentIntent, error) {
	if c.secretKey == "" {
		return nil, fmt.Errorf("%w: payment gateway secret key is not configured", contract.ErrValidation)
	}
	if in.AmountCents <= 0 || strings.TrimSpace(in.Currency) == "" {
		return nil, fmt.Errorf("%w: amount and currency are required", contract.ErrValidation)
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(in.AmountCents, 10))
	form.Set("currency", strings.ToLower(in.Currency))
	if in.CustomerEmail != "" {
		form.Set("receipt_email", in.CustomerEmail)
	}
	form.Set("automatic_payment_methods[enabled]", "true")

	return retry.Do(ctx, c.policy, func(ctx context.Context) (*contract.PaymentIntent, error) {
		return c.postForm(ctx, "/v1/payment_intents", form)
	})
}

// IntentByID fetches the current state of a payment intent.
func (c *Client) IntentByID(ctx context.Context, intentID string) (*contract.PaymentIntent, error) {
	if c.secretKey == "" {
		return nil, fmt.Errorf("%w: payment gateway secret key is not configured", contract.ErrValidation)
	}
	if strings.TrimSpace(intentID) == "" {
		return nil, fmt.Errorf("%w: payment intent id is required", contract.ErrValidation)
	}

	return retry.Do(ctx, c.policy, func(ctx context.Context) (*contract.PaymentIntent, error) {
		return c.get(ctx, "/v1/payment_intents/"+url.PathEscape(intentID))
	})
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*contract.PaymentIntent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build gateway request: %v", contract.ErrValidation, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (*contract.PaymentIntent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build gateway request: %v", contract.ErrValidation, err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*contract.PaymentIntent, error) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: gateway request: %v", contract.ErrConnectivity, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read gateway response: %v", contract.ErrConnectivity, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, decodeAPIError(resp.StatusCode, raw)
	}

	var payload intentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode gateway response: %v", contract.ErrConnectivity, err)
	}
	return payload.toIntent(), nil
}

type intentPayload struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	ReceiptEmail string `json:"receipt_email"`
	ClientSecret string `json:"client_secret"`
}

func (p intentPayload) toIntent() *contract.PaymentIntent {
	return &contract.PaymentIntent{
		ID:            p.ID,
		Status:        p.Status,
		AmountCents:   p.Amount,
		Currency:      p.Currency,
		CustomerEmail: p.ReceiptEmail,
		ClientSecret:  p.ClientSecret,
	}
}

func decodeAPIError(statusCode int, raw []byte) error {
	var payload struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Error.Type == "" {
		if statusCode >= 500 {
			return &APIError{StatusCode: statusCode, Type: "api_error", Message: strings.TrimSpace(string(raw))}
		}
		return &APIError{StatusCode: statusCode, Type: "invalid_request_error", Message: strings.TrimSpace(string(raw))}
	}
	apiErr := payload.Error
	apiErr.StatusCode = statusCode
	return &apiErr
}
