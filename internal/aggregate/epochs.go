package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sugarWatch/internal/address"
	"sugarWatch/internal/cache"
	"sugarWatch/internal/model"
)

// EpochAggregator builds the latest reward epoch per pool.
type EpochAggregator struct {
	tokens   *TokenRegistry
	prices   *PriceService
	source   EpochSource
	pageSize int
	logger   *zap.Logger

	latest *cache.Cache[struct{}, []model.LiquidityPoolEpoch]
}

// NewEpochAggregator creates an epoch aggregator cached for ttl.
func NewEpochAggregator(
	tokens *TokenRegistry,
	prices *PriceService,
	source EpochSource,
	pageSize int,
	ttl time.Duration,
	logger *zap.Logger,
) *EpochAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	a := &EpochAggregator{
		tokens:   tokens,
		prices:   prices,
		source:   source,
		pageSize: pageSize,
		logger:   logger,
	}
	a.latest = cache.New("epochs", ttl, a.fetchLatest)
	return a
}

// Latest returns the most recent epoch of every pool.
func (a *EpochAggregator) Latest(ctx context.Context) ([]model.LiquidityPoolEpoch, error) {
	return a.latest.Get(ctx, struct{}{})
}

// ForPool returns the latest epoch of the pool at addr, or nil when there is none.
func (a *EpochAggregator) ForPool(ctx context.Context, addr string) (*model.LiquidityPoolEpoch, error) {
	normalized, err := address.Normalize(addr)
	if err != nil {
		return nil, err
	}
	epochs, err := a.Latest(ctx)
	if err != nil {
		return nil, err
	}
	for i := range epochs {
		if epochs[i].PoolAddress == normalized {
			epoch := epochs[i]
			return &epoch, nil
		}
	}
	return nil, nil
}

func (a *EpochAggregator) fetchLatest(ctx context.Context, _ struct{}) ([]model.LiquidityPoolEpoch, error) {
	u, err := loadUniverse(ctx, a.tokens, a.prices)
	if err != nil {
		return nil, err
	}

	raw, err := paginate(ctx, a.pageSize, a.source.LatestEpochs)
	if err != nil {
		return nil, fmt.Errorf("fetch epochs: %w", err)
	}

	epochs := make([]model.LiquidityPoolEpoch, 0, len(raw))
	for _, r := range raw {
		epochs = append(epochs, buildEpoch(r, u))
	}
	a.logger.Debug("epochs loaded", zap.Int("count", len(epochs)))
	return epochs, nil
}
