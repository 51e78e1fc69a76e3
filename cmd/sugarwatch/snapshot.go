package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sugarWatch/internal/config"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
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

	collector := svc.collector(cfg.Config, cfg.TopPools, logger)

	logger.Info("snapshot start",
		zap.String("protocol", cfg.Protocol),
		zap.Duration("interval", cfg.Interval),
		zap.Bool("once", cfg.Once),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("redis", cfg.Redis.Addr),
		zap.Int("top_pools", cfg.TopPools),
	)

	if cfg.Once {
		return collector.CollectAndStore(ctx, stores.writer())
	}
	return collector.Run(ctx, cfg.Interval, stores.writer())
}
