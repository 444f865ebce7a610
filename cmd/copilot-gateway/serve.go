package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/copilot-gateway/gateway/pkg/gatewayconfig"
	"github.com/copilot-gateway/gateway/pkg/gatewaylog"
	"github.com/copilot-gateway/gateway/pkg/modelcatalog"
	"github.com/copilot-gateway/gateway/pkg/server"
	"github.com/copilot-gateway/gateway/pkg/upstream"
)

var (
	servePort  int
	configPath string
	catalogTTL time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway's HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8787, "port to listen on")
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to config.yaml (defaults to ~/.config/copilot-gateway/config.yaml)")
	serveCmd.Flags().DurationVar(&catalogTTL, "catalog-refresh", 15*time.Minute, "background model catalog refresh interval")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, client, catalog, err := bootstrap()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := catalog.Refresh(ctx); err != nil {
		return fmt.Errorf("initial catalog refresh: %w", err)
	}
	go refreshCatalogPeriodically(ctx, catalog, catalogTTL)

	srv := server.New(server.Config{
		Upstream: client,
		Catalog:  catalog,
		Settings: cfg,
	})

	addr := fmt.Sprintf(":%d", servePort)
	gatewaylog.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, srv.Router())
}

func refreshCatalogPeriodically(ctx context.Context, catalog *modelcatalog.Catalog, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := catalog.Refresh(ctx); err != nil {
				gatewaylog.Warn("background catalog refresh failed", zap.Error(err))
			}
		}
	}
}

func bootstrap() (*gatewayconfig.Config, *upstream.Client, *modelcatalog.Catalog, error) {
	path := configPath
	if path == "" {
		defaultPath, err := gatewayconfig.DefaultConfigPath()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("resolving default config path: %w", err)
		}
		path = defaultPath
	}

	cfg, err := gatewayconfig.Load(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	client := upstream.New(upstream.Config{
		BaseURL: cfg.UpstreamBaseURL(),
		Token:   cfg.UpstreamToken(),
	})
	catalog := modelcatalog.New(client)

	return cfg, client, catalog, nil
}
