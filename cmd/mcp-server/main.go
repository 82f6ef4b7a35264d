// cmd/mcp-server/main.go — Standalone HTTP MCP server for symdiff
//
// Exposes the symdiff tools as an HTTP endpoint for AI agent frameworks.
//
// Usage:
//
//	go run ./cmd/mcp-server --port 8080
//	go run ./cmd/mcp-server --config symdiff.yaml
//
// Tool call endpoint: POST /tool
// Batch endpoint:     POST /batch
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
// Metrics endpoint:   GET  /metrics
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/njchilds90/symdiff/internal/config"
	"github.com/njchilds90/symdiff/internal/logging"
	"github.com/njchilds90/symdiff/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile  string
		port     int
		logLevel string
	)
	cmd := &cobra.Command{
		Use:          "mcp-server",
		Short:        "HTTP MCP server for symbolic differentiation",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Addr = fmt.Sprintf(":%d", port)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(logging.Config{
				Level:   cfg.Log.Level,
				JSON:    cfg.Log.Format == "json",
				Service: "mcp-server",
				Writer:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			var metrics *server.Metrics
			if cfg.Metrics.Enabled {
				metrics = server.NewMetrics(cfg.Metrics.Namespace)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := server.New(cfg, logger, metrics).Run(ctx); err != nil {
				logger.Error("server stopped", "error", err)
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "YAML config file")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on, overrides server.addr")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	return cmd
}
