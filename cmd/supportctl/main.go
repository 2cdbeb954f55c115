// supportctl runs the support coordinator from the command line: it
// discovers the four domain agents, opens a session, and answers each query
// given on the command line (or a built-in demo set) through delegation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"shopmesh/a2a"
	"shopmesh/coordinator"
	"shopmesh/inference"
	configx "shopmesh/pkg/config"
	logx "shopmesh/pkg/logger"
)

type appConfig struct {
	CatalogURL   string        `split_words:"true" default:"http://localhost:8001"`
	InventoryURL string        `split_words:"true" default:"http://localhost:8002"`
	ShippingURL  string        `split_words:"true" default:"http://localhost:8003"`
	PaymentURL   string        `split_words:"true" default:"http://localhost:8004"`
	APIKey       string        `envconfig:"A2A_API_KEY"`
	Timeout      time.Duration `split_words:"true" default:"30s"`
	Debug        bool          `split_words:"true" default:"false"`
	PrettyLogs   bool          `split_words:"true" default:"true"`
}

var demoQueries = []string{
	"Tell me about the iPhone 15 Pro and its price.",
	"Is the MacBook Pro 14 in stock?",
	"How long would shipping an iPhone 15 Pro to Bangkok take?",
	"Can you track package 1Z999 for me?",
	"I'd like to pay $49.99 for my order.",
}

func main() {
	cfg := configx.MustNew[appConfig]("SUPPORT")
	logx.Init(logx.Config{Debug: cfg.Debug, PrettyFormat: cfg.PrettyLogs, Service: "supportctl"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := coordinator.NewRegistry()
	agents := map[string]string{
		"product catalog": cfg.CatalogURL,
		"inventory":       cfg.InventoryURL,
		"shipping":        cfg.ShippingURL,
		"payment":         cfg.PaymentURL,
	}
	for label, baseURL := range agents {
		client, err := a2a.NewClient(ctx, a2a.ClientConfig{
			BaseURL: baseURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			log.Fatal().Err(err).Str("agent", label).Str("url", baseURL).Msg("agent discovery failed")
		}
		registry.Register(client)
		log.Info().Str("agent", client.Card().Name).Str("url", baseURL).Msg("agent registered")
	}

	co, err := coordinator.New(registry,
		coordinator.WithSynthesizer(coordinator.NewInferenceSynthesizer(
			inference.NewClient(*configx.MustNew[inference.Config]("INFERENCE")),
		)),
		coordinator.WithDelegateTimeout(cfg.Timeout),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build coordinator")
	}

	queries := os.Args[1:]
	if len(queries) == 0 {
		queries = demoQueries
	}

	sessionID := co.StartSession("cli")
	for _, q := range queries {
		reply, err := co.HandleMessage(ctx, sessionID, q)
		if err != nil {
			log.Fatal().Err(err).Str("query", q).Msg("turn failed")
		}
		fmt.Printf("> %s\n%s\n\n", q, reply)
	}
}
