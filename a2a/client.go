package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shopmesh/contract"
	"shopmesh/retry"
)

const maxResponseSizeBytes = 2 << 20

// InternalKeyHeader carries the shared secret between service boundaries.
const InternalKeyHeader = "x-internal-api-key"

// ClientConfig configures a remote agent proxy.
type ClientConfig struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" required:"true"`
	APIKey  string        `envconfig:"API_KEY" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
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

// WithRetryPolicy replaces the transport retry policy.
func WithRetryPolicy(p retry.Policy) ClientOption {
	return func(c *Client) {
		c.policy = p
	}
}

// Client is the client-side proxy for one remote agent. It resolves the
// agent's card exactly once at construction and translates delegate calls
// into task requests against the agent's tasks endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	policy     retry.Policy
	card       AgentCard
}

// NewClient validates the base URL, fetches the agent card, and returns a
// ready proxy. The card is cached for the client's lifetime; there is no
// invalidation, so a remote card change requires a new client.
func NewClient(ctx context.Context, cfg ClientConfig, opts ...ClientOption) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: agent base url is required", contract.ErrValidation)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid agent base url: %v", contract.ErrValidation, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout},
		policy:     retry.Delegate(transientTransport),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	card, err := c.fetchCard(ctx)
	if err != nil {
		return nil, err
	}
	c.card = *card

	return c, nil
}

// Card returns the capability card fetched at construction.
func (c *Client) Card() AgentCard {
	return c.card
}

// SendTask posts the task to the remote agent and returns the content of the
// final event. Transport failures are retried under the delegate policy; once
// exhausted the last error is returned and concerns this call only.
func (c *Client) SendTask(ctx context.Context, task Task) (string, error) {
	return retry.Do(ctx, c.policy, func(ctx context.Context) (string, error) {
		return c.sendOnce(ctx, task)
	})
}

func (c *Client) fetchCard(ctx context.Context) (*AgentCard, error) {
	return retry.Do(ctx, c.policy, func(ctx context.Context) (*AgentCard, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+WellKnownCardPath, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: build card request: %v", contract.ErrValidation, err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: fetch agent card: %v", contract.ErrConnectivity, err)
		}
		defer resp.Body.Close()

		if err := statusError(resp.StatusCode, "agent card"); err != nil {
			return nil, err
		}

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
		if err != nil {
			return nil, fmt.Errorf("%w: read agent card: %v", contract.ErrConnectivity, err)
		}

		var card AgentCard
		if err := json.Unmarshal(raw, &card); err != nil {
			return nil, fmt.Errorf("%w: malformed agent card: %v", contract.ErrConnectivity, err)
		}
		if strings.TrimSpace(card.Name) == "" {
			return nil, fmt.Errorf("%w: agent card has no name", contract.ErrConnectivity)
		}

		return &card, nil
	})
}

func (c *Client) sendOnce(ctx context.Context, task Task) (string, error) {
	body, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("%w: marshal task: %v", contract.ErrValidation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+TasksPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build task request: %v", contract.ErrValidation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(InternalKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: send task %s: %v", contract.ErrConnectivity, task.ID, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode, "tasks endpoint"); err != nil {
		return "", err
	}

	final, err := readFinalEvent(resp.Body, task.ID)
	if err != nil {
		return "", err
	}
	if final.Status == TaskStatusFailed {
		return "", fmt.Errorf("%w: task %s rejected: %s", contract.ErrValidation, task.ID, final.Content)
	}
	return final.Content, nil
}

// readFinalEvent consumes the event stream, correlates by task id, and keeps
// the final event with non-empty content. Progress events are discarded.
func readFinalEvent(r io.Reader, taskID string) (*TaskEvent, error) {
	dec := json.NewDecoder(io.LimitReader(r, maxResponseSizeBytes))
	var final *TaskEvent
	for {
		var ev TaskEvent
		if err := dec.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: decode task event: %v", contract.ErrUpstream, err)
		}
		if ev.TaskID != "" && ev.TaskID != taskID {
			continue
		}
		if ev.Final && (ev.Content != "" || ev.Status == TaskStatusFailed) {
			final = &ev
		}
	}
	if final == nil {
		return nil, fmt.Errorf("%w: event stream ended without a final event", contract.ErrUpstream)
	}
	return final, nil
}

func statusError(code int, surface string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s returned status %d", contract.ErrUnauthorized, surface, code)
	case code >= 500:
		return fmt.Errorf("%w: %s returned status %d", contract.ErrUpstream, surface, code)
	default:
		return fmt.Errorf("%w: %s returned status %d", contract.ErrValidation, surface, code)
	}
}

// transientTransport marks connectivity and upstream failures as retryable;
// validation and authorization failures fail immediately.
func transientTransport(err error) bool {
	return errors.Is(err, contract.ErrConnectivity) || errors.Is(err, contract.ErrUpstream)
}
