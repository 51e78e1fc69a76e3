package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sugarWatch/internal/api"
	"sugarWatch/internal/bot"
	"sugarWatch/internal/config"
)

func runBots(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBots(cfgFile, cmd.Flags())
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

	g, ctx := errgroup.WithContext(ctx)

	tickerCfg := func(name, presence string) bot.TickerConfig {
		return bot.TickerConfig{
			Name:       name,
			Interval:   cfg.Interval,
			Presence:   presence,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		}
	}
	startTicker := func(token string, tc bot.TickerConfig, status bot.StatusFunc) error {
		session, err := bot.NewSession(token)
		if err != nil {
			return fmt.Errorf("%s bot: %w", tc.Name, err)
		}
		t := bot.NewTicker(tc, status, bot.NewDiscordPresenter(session), svc.metrics, logger)
		g.Go(func() error { return bot.RunTicker(ctx, session, t) })
		return nil
	}

	if cfg.Discord.Pricing != "" {
		token, err := svc.listedToken(ctx, cfg.Token)
		if err != nil {
			return fmt.Errorf("price bot: %w", err)
		}
		stable, err := svc.listedToken(ctx, cfg.Stable)
		if err != nil {
			return fmt.Errorf("price bot: %w", err)
		}
		err = startTicker(cfg.Discord.Pricing, tickerCfg("price", bot.PricePresence(stable)),
			bot.PriceStatus(svc.prices, token))
		if err != nil {
			return err
		}
	}
	if cfg.Discord.TVL != "" {
		err := startTicker(cfg.Discord.TVL, tickerCfg("tvl", bot.TVLPresence(cfg.Protocol)),
			bot.TVLStatus(svc.pools))
		if err != nil {
			return err
		}
	}
	if cfg.Discord.Fees != "" {
		err := startTicker(cfg.Discord.Fees, tickerCfg("fees", bot.FeesPresence(cfg.Protocol)),
			bot.FeesStatus(svc.pools))
		if err != nil {
			return err
		}
	}
	if cfg.Discord.Rewards != "" {
		err := startTicker(cfg.Discord.Rewards, tickerCfg("rewards", bot.RewardsPresence(cfg.Protocol)),
			bot.RewardsStatus(svc.epochs))
		if err != nil {
			return err
		}
	}
	if cfg.Discord.Commander != "" {
		session, err := bot.NewSession(cfg.Discord.Commander)
		if err != nil {
			return fmt.Errorf("commander bot: %w", err)
		}
		commander := bot.NewCommander(svc.pools, cfg.AppURL, logger.With(zap.String("bot", "commander")))
		g.Go(func() error { return bot.RunCommander(ctx, session, commander) })
	}

	if cfg.MetricsAddr != "" {
		server := api.NewServer(cfg.MetricsAddr, svc.apiDeps(cfg.Config, svc.collector(cfg.Config, 0, logger)), logger)
		g.Go(server.Start)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	logger.Info("bots start",
		zap.String("protocol", cfg.Protocol),
		zap.Duration("interval", cfg.Interval),
		zap.Bool("pricing", cfg.Discord.Pricing != ""),
		zap.Bool("tvl", cfg.Discord.TVL != ""),
		zap.Bool("fees", cfg.Discord.Fees != ""),
		zap.Bool("rewards", cfg.Discord.Rewards != ""),
		zap.Bool("commander", cfg.Discord.Commander != ""),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
