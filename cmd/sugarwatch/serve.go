package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sugarWatch/internal/api"
	"sugarWatch/internal/config"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newServices(ctx, cfg.Config, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	stores, err := openSinks(ctx, cfg.SinkConfig)
	if err != nil {
		return err
	}
	defer stores.Close()

	deps := svc.apiDeps(cfg.Config, svc.collector(cfg.Config, 0, logger))
	if reader := stores.reader(); reader != nil {
		deps.Snapshots = reader
	}
	server := api.NewServer(cfg.HTTPAddr, deps, logger)

	logger.Info("serve start",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("protocol", cfg.Protocol),
		zap.Bool("snapshots", deps.Snapshots != nil),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
