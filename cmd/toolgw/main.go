package main

import (
	"flag"
	"log"

	"github.com/tripsmith/tripsmith/internal/backends"
	"github.com/tripsmith/tripsmith/internal/toolgateway"
	"github.com/tripsmith/tripsmith/pkg/config"
)

// toolgw serves the tool backends over HTTP for engines running in
// gateway mode.
func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	mock := flag.Bool("mock", false, "serve deterministic mock backends only")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	registry := backends.LocalRegistry()
	if *mock {
		registry = backends.MockRegistry()
	}

	srv := toolgateway.New(cfg.Tools.GatewayListen, cfg.Tools.GatewayAPIKey, registry)
	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}
