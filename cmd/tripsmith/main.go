package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/tripsmith/tripsmith/internal/agent"
	"github.com/tripsmith/tripsmith/internal/backends"
	"github.com/tripsmith/tripsmith/internal/export"
	"github.com/tripsmith/tripsmith/internal/gateway"
	"github.com/tripsmith/tripsmith/internal/observability"
	"github.com/tripsmith/tripsmith/internal/store"
	"github.com/tripsmith/tripsmith/internal/toolrouter"
	"github.com/tripsmith/tripsmith/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	mode := cfg.Mode()

	observability.PrintBanner(string(mode))
	logger := observability.NewLogger()

	st, err := store.New(cfg.Memory.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	// Tool routing: mock and local run backends in-process, gateway
	// forwards every call over HTTP.
	var registry toolrouter.Registry
	var gatewayClient toolrouter.GatewayCaller
	switch mode {
	case config.ModeLocal:
		registry = backends.LocalRegistry()
	case config.ModeGateway:
		gatewayClient = toolrouter.NewGatewayClient(cfg.Tools.GatewayURL, cfg.Tools.GatewayAPIKey)
	default:
		registry = backends.MockRegistry()
	}
	router := toolrouter.New(mode, registry, gatewayClient, func(tr toolrouter.TraceEvent) {
		logger.LogTrace("", tr)
	})

	var llm llms.Model
	switch cfg.Provider.Name {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(cfg.Provider.APIKey),
			openai.WithModel(cfg.Provider.Model),
		}
		if cfg.Provider.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.Provider.BaseURL))
		}
		llm, err = openai.New(opts...)
	default:
		log.Fatalf("Provider %s not yet implemented in main", cfg.Provider.Name)
	}
	if err != nil {
		log.Fatal(err)
	}

	prompts := agent.NewPromptManager(cfg.App.PromptsDir)

	orch := agent.New(llm, router, st, prompts, logger)
	if cfg.App.MaxRounds > 0 {
		orch.MaxRounds = cfg.App.MaxRounds
	}
	orch.AutoExport = cfg.Export.Auto
	orch.Exporter = export.New(router, cfg.Export.RetryLimit)

	if !cfg.Gateways.Telegram.Enabled || cfg.Gateways.Telegram.Token == "" {
		log.Fatal("Telegram gateway is not enabled or token is missing")
	}

	tg, err := gateway.NewTelegramGateway(cfg.Gateways.Telegram.Token, orch)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.LogHeartbeat()
			}
		}
	}()

	go func() {
		if err := tg.Start(); err != nil {
			log.Printf("Gateway error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	tg.Stop()
	log.Println("Shutting down.")
}
