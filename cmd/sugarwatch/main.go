package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// a missing .env is fine, settings may come from the environment
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "sugarwatch",
		Short:        "Velodrome/Aerodrome sugar data bots and API",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	botsCmd := &cobra.Command{
		Use:   "bots",
		Short: "Run the discord ticker bots and the /pool commander",
		RunE:  runBots,
	}
	addChainFlags(botsCmd.Flags())
	botsCmd.Flags().String("discord-token-pricing", "", "price bot token")
	botsCmd.Flags().String("discord-token-tvl", "", "TVL bot token")
	botsCmd.Flags().String("discord-token-fees", "", "fees bot token")
	botsCmd.Flags().String("discord-token-rewards", "", "rewards bot token")
	botsCmd.Flags().String("discord-token-commander", "", "commander bot token")
	botsCmd.Flags().Duration("interval", 2*time.Minute, "ticker refresh interval")
	botsCmd.Flags().Int("max-retries", 3, "status refresh retries per tick")
	botsCmd.Flags().Duration("retry-delay", time.Second, "initial retry backoff")
	botsCmd.Flags().String("metrics-addr", "", "serve the HTTP API and /metrics on this address")
	root.AddCommand(botsCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP query API",
		RunE:  runServe,
	}
	addChainFlags(serveCmd.Flags())
	serveCmd.Flags().String("http-addr", ":8080", "listen address")
	addSinkFlags(serveCmd.Flags(), "")
	root.AddCommand(serveCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record protocol snapshots to JSONL, Postgres and Redis",
		RunE:  runSnapshot,
	}
	addChainFlags(snapshotCmd.Flags())
	snapshotCmd.Flags().Duration("interval", 10*time.Minute, "snapshot interval")
	snapshotCmd.Flags().Bool("once", false, "take one snapshot and exit")
	snapshotCmd.Flags().Int("top-pools", 20, "pool rows kept per snapshot, 0 keeps all")
	addSinkFlags(snapshotCmd.Flags(), "./data/snapshots.jsonl")
	root.AddCommand(snapshotCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "RPC URL")
	flags.String("sugar-address", "", "LpSugar contract address")
	flags.String("oracle-address", "", "price oracle contract address")
	flags.String("sugar-abi", "", "optional LpSugar ABI JSON file")
	flags.String("oracle-abi", "", "optional price oracle ABI JSON file")
	flags.Int("batch-size", 40, "tokens per oracle request")
	flags.Int("token-limit", 2000, "tokens fetched from sugar")
	flags.Int("page-size", 2000, "pools and epochs per sugar page")
	flags.String("protocol", "Velodrome", "protocol name")
	flags.String("app-url", "https://velodrome.finance", "web app base URL")
	flags.String("token", "", "protocol token address")
	flags.String("stable", "", "stable token address prices are quoted in")
	flags.StringSlice("connectors", nil, "oracle connector token addresses (comma-separated)")
	flags.Duration("tokens-ttl", 10*time.Minute, "token cache lifetime")
	flags.Duration("pools-ttl", 10*time.Minute, "pool and epoch cache lifetime")
	flags.Duration("prices-ttl", time.Minute, "price cache lifetime")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

// addSinkFlags declares the snapshot stores. serve reads back from the
// first configured one of redis, postgres, JSONL.
func addSinkFlags(flags *pflag.FlagSet, defaultOut string) {
	flags.String("out", defaultOut, "snapshot JSONL path, empty disables")
	flags.String("pg-dsn", "", "Postgres DSN")
	flags.String("redis-addr", "", "Redis address")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database")
	flags.Duration("redis-ttl", time.Hour, "lifetime of the latest snapshot key")
	flags.Duration("redis-retention", 7*24*time.Hour, "history retention, 0 keeps everything")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
