// Package report joins pools, epochs and the watched token price into snapshots.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sugarWatch/internal/metrics"
	"sugarWatch/internal/model"
	"sugarWatch/internal/storage"
	"sugarWatch/internal/telemetry"
)

// PoolLister lists priced pools.
type PoolLister interface {
	Pools(ctx context.Context) ([]model.LiquidityPool, error)
}

// EpochLister lists the latest epochs.
type EpochLister interface {
	Latest(ctx context.Context) ([]model.LiquidityPoolEpoch, error)
}

// TokenPricer resolves and prices a single token.
type TokenPricer interface {
	ByAddress(ctx context.Context, addr string) (*model.Token, error)
	Prices(ctx context.Context, tokens []model.Token) ([]model.Price, error)
}

// Config controls snapshot contents.
type Config struct {
	Protocol string
	// Token is the protocol token whose price is recorded. Empty skips it.
	Token string
	// TopPools limits the pool rows kept, by TVL. Zero keeps all pools.
	TopPools int
}

// Collector produces protocol snapshots.
type Collector struct {
	cfg     Config
	pools   PoolLister
	epochs  EpochLister
	pricer  TokenPricer
	metrics *telemetry.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewCollector(cfg Config, pools PoolLister, epochs EpochLister, pricer TokenPricer, m *telemetry.Metrics, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		cfg:     cfg,
		pools:   pools,
		epochs:  epochs,
		pricer:  pricer,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Collect fetches pools, epochs and the token price concurrently and derives a snapshot.
// Rewards come from the epoch totals; fees and volume from the pools.
func (c *Collector) Collect(ctx context.Context) (model.Snapshot, error) {
	var (
		pools  []model.LiquidityPool
		epochs []model.LiquidityPoolEpoch
		price  *model.Price
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pools, err = c.pools.Pools(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		epochs, err = c.epochs.Latest(gctx)
		return err
	})
	if c.cfg.Token != "" && c.pricer != nil {
		g.Go(func() error {
			var err error
			price, err = c.tokenPrice(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return model.Snapshot{}, err
	}

	rewards := metrics.RewardsOf(epochs)
	snap := model.Snapshot{
		ID:          uuid.New(),
		TakenAt:     c.now().UTC(),
		Protocol:    c.cfg.Protocol,
		PoolCount:   len(pools),
		TVL:         metrics.TVL(pools),
		Fees:        metrics.TotalFees(pools),
		Volume:      metrics.TotalVolume(pools),
		EpochFees:   rewards.Fees,
		EpochBribes: rewards.Bribes,
	}
	if price != nil {
		snap.TokenSymbol = price.Token.Symbol
		snap.TokenPrice = price.Price
	}

	rows := pools
	if c.cfg.TopPools > 0 {
		rows = metrics.TopByTVL(pools, c.cfg.TopPools)
	}
	snap.Pools = make([]model.PoolSnapshot, 0, len(rows))
	for _, p := range rows {
		snap.Pools = append(snap.Pools, model.NewPoolSnapshot(p))
	}

	c.metrics.RecordSnapshot(snap)
	return snap, nil
}

func (c *Collector) tokenPrice(ctx context.Context) (*model.Price, error) {
	token, err := c.pricer.ByAddress(ctx, c.cfg.Token)
	if err != nil {
		return nil, err
	}
	if token == nil {
		c.logger.Warn("watched token not listed", zap.String("token", c.cfg.Token))
		return nil, nil
	}
	prices, err := c.pricer.Prices(ctx, []model.Token{*token})
	if err != nil {
		return nil, err
	}
	if len(prices) != 1 {
		return nil, fmt.Errorf("expected 1 price, got %d", len(prices))
	}
	return &prices[0], nil
}

// Run collects a snapshot every interval and stores it in sink until ctx is done.
// A failed cycle is logged and the next one proceeds.
func (c *Collector) Run(ctx context.Context, interval time.Duration, sink storage.Storage) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be > 0")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := c.CollectAndStore(ctx, sink); err != nil {
			c.logger.Error("snapshot cycle failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// CollectAndStore collects one snapshot and writes it to sink.
func (c *Collector) CollectAndStore(ctx context.Context, sink storage.Storage) error {
	snap, err := c.Collect(ctx)
	if err != nil {
		return fmt.Errorf("collect snapshot: %w", err)
	}
	if err := sink.PutSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	c.logger.Info("snapshot stored",
		zap.String("id", snap.ID.String()),
		zap.Int("pools", snap.PoolCount),
		zap.Float64("tvl", snap.TVL),
		zap.Float64("rewards", snap.Rewards()),
	)
	return nil
}
