package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imposterparty/backend/internal/httpapi"
	"github.com/imposterparty/backend/internal/hub"
)

func main() {
	// Optional; env vars win either way.
	_ = godotenv.Load()

	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

func serve(ctx context.Context, cfg *Config) error {
	log, err := newLogger(cfg.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	h := hub.NewHub(ctx, log)

	// Build the router with the hub injected.
	handler := httpapi.SetupRoutes(h, log, cfg.baseURL)

	log.Info("listening", zap.String("addr", cfg.addr()))
	return http.ListenAndServe(cfg.addr(), handler)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
