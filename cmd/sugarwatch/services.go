package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"sugarWatch/internal/aggregate"
	"sugarWatch/internal/api"
	"sugarWatch/internal/chain"
	"sugarWatch/internal/config"
	"sugarWatch/internal/model"
	"sugarWatch/internal/report"
	"sugarWatch/internal/sugar"
	"sugarWatch/internal/telemetry"
)

const metricsNamespace = "sugarwatch"

// services is the shared data layer every command builds on.
type services struct {
	chain    *chain.Client
	registry *prometheus.Registry
	metrics  *telemetry.Metrics

	tokens *aggregate.TokenRegistry
	prices *aggregate.PriceService
	pools  *aggregate.PoolAggregator
	epochs *aggregate.EpochAggregator
}

func newServices(ctx context.Context, cfg config.Config, logger *zap.Logger) (*services, error) {
	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, chain.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	head, err := chainClient.Head(ctx)
	if err != nil {
		chainClient.Close()
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	logger.Info("rpc connected",
		zap.String("chain_id", head.ChainID.String()),
		zap.Uint64("block", head.Block),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := telemetry.NewMetrics(registry, metricsNamespace)

	sugarClient, err := sugar.NewClient(chainClient, sugar.Config{
		SugarAddress:  common.HexToAddress(cfg.SugarAddress),
		OracleAddress: common.HexToAddress(cfg.OracleAddress),
		MaxBatch:      cfg.BatchSize,
		SugarABIPath:  cfg.SugarABI,
		OracleABIPath: cfg.OracleABI,
	}, sugar.WithMetrics(m), sugar.WithLogger(logger))
	if err != nil {
		chainClient.Close()
		return nil, err
	}

	tokens := aggregate.NewTokenRegistry(sugarClient, cfg.TokenLimit, cfg.TokensTTL, logger)
	prices, err := aggregate.NewPriceService(sugarClient, aggregate.PriceConfig{
		BatchSize:  sugarClient.MaxBatch(),
		Stable:     cfg.Stable,
		Connectors: cfg.Connectors,
		TTL:        cfg.PricesTTL,
	}, logger)
	if err != nil {
		chainClient.Close()
		return nil, err
	}

	return &services{
		chain:    chainClient,
		registry: registry,
		metrics:  m,
		tokens:   tokens,
		prices:   prices,
		pools:    aggregate.NewPoolAggregator(tokens, prices, sugarClient, cfg.PageSize, cfg.PoolsTTL, logger),
		epochs:   aggregate.NewEpochAggregator(tokens, prices, sugarClient, cfg.PageSize, cfg.PoolsTTL, logger),
	}, nil
}

func (s *services) Close() {
	s.chain.Close()
}

// listedToken resolves a configured token address against the listed tokens.
func (s *services) listedToken(ctx context.Context, addr string) (model.Token, error) {
	token, err := s.tokens.ByAddress(ctx, addr)
	if err != nil {
		return model.Token{}, err
	}
	if token == nil {
		return model.Token{}, fmt.Errorf("token %s is not listed", addr)
	}
	return *token, nil
}

func (s *services) collector(cfg config.Config, topPools int, logger *zap.Logger) *report.Collector {
	return report.NewCollector(report.Config{
		Protocol: cfg.Protocol,
		Token:    cfg.Token,
		TopPools: topPools,
	}, s.pools, s.epochs, s.tokensAndPrices(), s.metrics, logger)
}

func (s *services) apiDeps(cfg config.Config, stats api.StatsService) api.Deps {
	return api.Deps{
		Tokens:   s.tokens,
		Prices:   s.prices,
		Pools:    s.pools,
		Epochs:   s.epochs,
		Stats:    stats,
		Gatherer: s.registry,
		Protocol: cfg.Protocol,
	}
}

// tokenPricer joins the registry lookup and the price service for the collector.
type tokenPricer struct {
	*aggregate.TokenRegistry
	*aggregate.PriceService
}

func (s *services) tokensAndPrices() tokenPricer {
	return tokenPricer{TokenRegistry: s.tokens, PriceService: s.prices}
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
