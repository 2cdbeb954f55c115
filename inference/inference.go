// Package inference wraps the external inference provider behind a small
// client used to synthesize coordinator replies. The provider speaks the
// OpenAI chat API, so any OpenAI-compatible base URL (OpenRouter included)
// works. Transient provider failures are absorbed by the inference retry
// policy; the coordinator degrades to plain concatenation when no provider
// is configured.
package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"shopmesh/contract"
	"shopmesh/retry"
)

// Config configures the inference provider client. An empty APIKey disables
// inference entirely.
type Config struct {
	BaseURL  string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey   string        `envconfig:"API_KEY" split_words:"true"`
	Model    string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-4o-mini"`
	Timeout  time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL  string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName string        `envconfig:"SITE_NAME" split_words:"true"`
}

// Client calls the inference provider with bounded retries.
type Client struct {
	oa     openaisdk.Client
	model  string
	policy retry.Policy
}

// NewClient returns a provider client, or nil when no API key is configured.
func NewClient(cfg Config) *Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.SiteName))
	}

	return &Client{
		oa:     openaisdk.NewClient(opts...),
		model:  strings.TrimSpace(cfg.Model),
		policy: retry.Inference(transientInference),
	}
}

// Complete runs one chat completion and returns the trimmed response text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	return retry.Do(ctx, c.policy, func(ctx context.Context) (string, error) {
		resp, err := c.oa.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
			Model: openaisdk.ChatModel(c.model),
			Messages: []openaisdk.ChatCompletionMessageParamUnion{
				openaisdk.SystemMessage(system),
				openaisdk.UserMessage(user),
			},
		})
		if err != nil {
			return "", classifyProviderError(err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("%w: provider returned no choices", contract.ErrUpstream)
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	})
}

// classifyProviderError maps provider failures onto the shared taxonomy.
// Rate limiting and server-side statuses are upstream failures; everything
// else from the API is treated as a final validation problem.
func classifyProviderError(err error) error {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return fmt.Errorf("%w: provider status %d: %v", contract.ErrUpstream, apiErr.StatusCode, err)
		default:
			return fmt.Errorf("%w: provider rejected request: %v", contract.ErrValidation, err)
		}
	}
	return fmt.Errorf("%w: provider request: %v", contract.ErrConnectivity, err)
}

func transientInference(err error) bool {
	return errors.Is(err, contract.ErrUpstream) || errors.Is(err, contract.ErrConnectivity)
}
