package aggregate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sugarWatch/internal/address"
	"sugarWatch/internal/cache"
	"sugarWatch/internal/model"
)

// PriceConfig holds the oracle routing defaults.
type PriceConfig struct {
	BatchSize  int
	Stable     string
	Connectors []string
	TTL        time.Duration
}

// priceEntries bounds the distinct oracle requests kept.
const priceEntries = 1024

// priceKey identifies one oracle request. Address lists are joined so the key stays comparable.
type priceKey struct {
	tokens     string
	stable     string
	connectors string
}

// PriceService prices tokens in the stable token through the oracle.
type PriceService struct {
	source     RateSource
	batchSize  int
	stable     string
	connectors []string
	logger     *zap.Logger

	rates *cache.Cache[priceKey, []float64]
}

// NewPriceService creates a price service. The stable token and connectors are normalized.
func NewPriceService(source RateSource, cfg PriceConfig, logger *zap.Logger) (*PriceService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("price batch size must be greater than zero")
	}
	stable, err := address.Normalize(cfg.Stable)
	if err != nil {
		return nil, fmt.Errorf("stable token: %w", err)
	}
	connectors, err := address.NormalizeAll(cfg.Connectors)
	if err != nil {
		return nil, fmt.Errorf("connector tokens: %w", err)
	}

	s := &PriceService{
		source:     source,
		batchSize:  cfg.BatchSize,
		stable:     stable,
		connectors: connectors,
		logger:     logger,
	}
	s.rates = cache.New("prices", cfg.TTL, s.fetchRates, cache.WithSize(priceEntries))
	return s, nil
}

// Stable returns the default stable token address.
func (s *PriceService) Stable() string {
	return s.stable
}

// Prices prices tokens against the default stable token and connectors.
func (s *PriceService) Prices(ctx context.Context, tokens []model.Token) ([]model.Price, error) {
	return s.GetPrices(ctx, tokens, s.stable, s.connectors)
}

// GetPrices returns one price per token, in the order of tokens. Chunks are
// requested concurrently and reassembled in chunk order.
func (s *PriceService) GetPrices(ctx context.Context, tokens []model.Token, stable string, connectors []string) ([]model.Price, error) {
	stable, err := address.Normalize(stable)
	if err != nil {
		return nil, err
	}
	connectors, err = address.NormalizeAll(connectors)
	if err != nil {
		return nil, err
	}

	chunks, err := SplitBatches(tokens, s.batchSize)
	if err != nil {
		return nil, err
	}

	results := make([][]model.Price, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			key := priceKey{
				tokens:     joinAddresses(chunk),
				stable:     stable,
				connectors: strings.Join(connectors, ","),
			}
			rates, err := s.rates.Get(gctx, key)
			if err != nil {
				return err
			}
			if len(rates) != len(chunk) {
				return fmt.Errorf("oracle returned %d rates for %d tokens", len(rates), len(chunk))
			}
			prices := make([]model.Price, len(chunk))
			for j, token := range chunk {
				prices[j] = model.Price{Token: token, Price: rates[j]}
			}
			results[i] = prices
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.Price, 0, len(tokens))
	for _, prices := range results {
		out = append(out, prices...)
	}
	return out, nil
}

func (s *PriceService) fetchRates(ctx context.Context, key priceKey) ([]float64, error) {
	tokens := splitAddresses(key.tokens)
	connectors := splitAddresses(key.connectors)

	raw, err := s.source.RatesWithConnectors(ctx, tokens, connectors, common.HexToAddress(key.stable))
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}

	rates := make([]float64, len(raw))
	for i, r := range raw {
		rates[i] = model.RateToFloat(r)
	}
	s.logger.Debug("rates loaded", zap.Int("tokens", len(tokens)))
	return rates, nil
}

func joinAddresses(tokens []model.Token) string {
	addrs := make([]string, len(tokens))
	for i, t := range tokens {
		addrs[i] = t.Address
	}
	return strings.Join(addrs, ",")
}

func splitAddresses(joined string) []common.Address {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]common.Address, len(parts))
	for i, p := range parts {
		out[i] = common.HexToAddress(p)
	}
	return out
}
