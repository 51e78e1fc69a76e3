package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sugarWatch/internal/address"
	"sugarWatch/internal/cache"
	"sugarWatch/internal/metrics"
	"sugarWatch/internal/model"
)

// DefaultPageSize is the page size used for pool and epoch listings.
const DefaultPageSize = 2000

// byAddressEntries bounds the per-address lookups kept, found or not.
const byAddressEntries = 1024

// PoolAggregator builds priced pools from the sugar pool list.
type PoolAggregator struct {
	tokens   *TokenRegistry
	prices   *PriceService
	source   PoolSource
	pageSize int
	logger   *zap.Logger

	all    *cache.Cache[struct{}, []model.LiquidityPool]
	byAddr *cache.Cache[string, *model.LiquidityPool]
}

// NewPoolAggregator creates a pool aggregator cached for ttl.
func NewPoolAggregator(
	tokens *TokenRegistry,
	prices *PriceService,
	source PoolSource,
	pageSize int,
	ttl time.Duration,
	logger *zap.Logger,
) *PoolAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	a := &PoolAggregator{
		tokens:   tokens,
		prices:   prices,
		source:   source,
		pageSize: pageSize,
		logger:   logger,
	}
	a.all = cache.New("pools", ttl, a.fetchPools)
	a.byAddr = cache.New("pool by address", ttl, a.findPool, cache.WithSize(byAddressEntries))
	return a
}

// Pools returns every pool, joined against the listed and priced tokens.
// Pools referencing unknown tokens are kept with nil token fields.
func (a *PoolAggregator) Pools(ctx context.Context) ([]model.LiquidityPool, error) {
	return a.all.Get(ctx, struct{}{})
}

// ByAddress returns the pool at addr, or nil when there is none.
func (a *PoolAggregator) ByAddress(ctx context.Context, addr string) (*model.LiquidityPool, error) {
	normalized, err := address.Normalize(addr)
	if err != nil {
		return nil, err
	}
	return a.byAddr.Get(ctx, normalized)
}

// Search ranks pools by symbol similarity to query.
func (a *PoolAggregator) Search(ctx context.Context, query string, limit int) ([]model.LiquidityPool, error) {
	pools, err := a.Pools(ctx)
	if err != nil {
		return nil, err
	}
	return SearchPools(pools, query, limit), nil
}

// TVL sums the stable value of the reserves of pools.
func (a *PoolAggregator) TVL(pools []model.LiquidityPool) float64 {
	return metrics.TVL(pools)
}

func (a *PoolAggregator) fetchPools(ctx context.Context, _ struct{}) ([]model.LiquidityPool, error) {
	u, err := loadUniverse(ctx, a.tokens, a.prices)
	if err != nil {
		return nil, err
	}

	raw, err := paginate(ctx, a.pageSize, a.source.Pools)
	if err != nil {
		return nil, fmt.Errorf("fetch pools: %w", err)
	}

	pools := make([]model.LiquidityPool, 0, len(raw))
	var unpriced int
	for _, r := range raw {
		pool := buildPool(r, u)
		if !pool.Priced() {
			unpriced++
		}
		pools = append(pools, pool)
	}
	a.logger.Debug("pools loaded",
		zap.Int("count", len(pools)),
		zap.Int("unpriced", unpriced),
	)
	return pools, nil
}

func (a *PoolAggregator) findPool(ctx context.Context, addr string) (*model.LiquidityPool, error) {
	pools, err := a.Pools(ctx)
	if err != nil {
		return nil, err
	}
	for i := range pools {
		if pools[i].Address == addr {
			pool := pools[i]
			return &pool, nil
		}
	}
	return nil, nil
}
