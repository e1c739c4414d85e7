// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-match/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat pipeline over HTTP",
	Long: `Serve exposes the pipeline as an HTTP API:

  GET  /health            liveness
  POST /v1/chat           {"input", "bot_id", "conversation_id", "user_id"}
  GET  /v1/jobs           recent ledger rows (?limit=, ?status=)
  GET  /v1/jobs/summary   ledger counts by final status

The HTTP status mirrors the envelope code. Chat requests are rate limited
by server.rate_limit and server.rate_burst.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default server.addr or :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper(), loadedSecrets)

	store, err := openLedger(cfg.Ledger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	orch, err := newOrchestrator(cfg, store, logger)
	if err != nil {
		return err
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithRateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst),
	}
	if store != nil {
		opts = append(opts, server.WithJobStore(store))
	}
	if cfg.Agent.Token == "" {
		logger.Warn("no agent token configured; chat requests will fail", "key", "agent.token")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(orch, opts...).ListenAndServe(ctx, cfg.Server.Addr)
}
