// shippingd serves the shipping agent.
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"shopmesh/a2a"
	configx "shopmesh/pkg/config"
	logx "shopmesh/pkg/logger"
	"shopmesh/store"
	"shopmesh/tools"
)

type appConfig struct {
	Addr       string       `split_words:"true" default:":8003"`
	PublicURL  string       `split_words:"true" default:"http://localhost:8003"`
	AuthKey    string       `envconfig:"A2A_API_KEY"`
	AuthMode   a2a.AuthMode `envconfig:"A2A_AUTH_MODE" default:"advisory"`
	Debug      bool         `split_words:"true" default:"false"`
	PrettyLogs bool         `split_words:"true" default:"false"`
}

func main() {
	cfg := configx.MustNew[appConfig]("SHIPPING")
	logx.Init(logx.Config{Debug: cfg.Debug, PrettyFormat: cfg.PrettyLogs, Service: "shippingd"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := store.Open(ctx, *configx.MustNew[store.Config](""))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}

	dispatcher := tools.NewDispatcher(
		tools.NewShippingEstimateTool(repos),
		tools.NewTrackingInfoTool(repos),
	)

	card := a2a.AgentCard{
		Name:        "shipping_agent",
		Description: "Quotes delivery options and tracks shipments.",
		Endpoint:    cfg.PublicURL,
		Operations:  dispatcher.Operations(),
	}

	srv, err := a2a.NewServer(card, dispatcher.Handle, a2a.AuthConfig{Key: cfg.AuthKey, Mode: cfg.AuthMode})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build agent server")
	}

	if err := srv.Start(ctx, cfg.Addr); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("agent server exited")
	}
}
