package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"sugarWatch/internal/address"
	"sugarWatch/internal/cache"
	"sugarWatch/internal/model"
)

// DefaultTokenLimit is large enough to return every sugar token in one call.
const DefaultTokenLimit = 2000

// TokenRegistry resolves tokens known to the sugar contract.
type TokenRegistry struct {
	source TokenSource
	limit  int
	logger *zap.Logger

	all    *cache.Cache[struct{}, []model.Token]
	listed *cache.Cache[struct{}, []model.Token]
}

// NewTokenRegistry creates a registry fetching up to limit tokens, cached for ttl.
func NewTokenRegistry(source TokenSource, limit int, ttl time.Duration, logger *zap.Logger) *TokenRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = DefaultTokenLimit
	}

	r := &TokenRegistry{
		source: source,
		limit:  limit,
		logger: logger,
	}
	r.all = cache.New("tokens", ttl, r.fetchAll)
	r.listed = cache.New("listed tokens", ttl, r.fetchListed)
	return r
}

// AllTokens returns every token, listed or not.
func (r *TokenRegistry) AllTokens(ctx context.Context) ([]model.Token, error) {
	return r.all.Get(ctx, struct{}{})
}

// ListedTokens returns the listed tokens.
func (r *TokenRegistry) ListedTokens(ctx context.Context) ([]model.Token, error) {
	return r.listed.Get(ctx, struct{}{})
}

// ByAddress returns the listed token at addr, or nil when there is none.
func (r *TokenRegistry) ByAddress(ctx context.Context, addr string) (*model.Token, error) {
	normalized, err := address.Normalize(addr)
	if err != nil {
		return nil, err
	}
	tokens, err := r.ListedTokens(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tokens {
		if tokens[i].Address == normalized {
			token := tokens[i]
			return &token, nil
		}
	}
	return nil, nil
}

func (r *TokenRegistry) fetchAll(ctx context.Context, _ struct{}) ([]model.Token, error) {
	raw, err := r.source.Tokens(ctx, r.limit, 0, common.Address{})
	if err != nil {
		return nil, fmt.Errorf("fetch tokens: %w", err)
	}

	tokens := make([]model.Token, 0, len(raw))
	for _, t := range raw {
		tokens = append(tokens, model.Token{
			Address:  address.Canonical(t.Address),
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
			Listed:   t.Listed,
		})
	}
	r.logger.Debug("tokens loaded", zap.Int("count", len(tokens)))
	return tokens, nil
}

func (r *TokenRegistry) fetchListed(ctx context.Context, _ struct{}) ([]model.Token, error) {
	all, err := r.AllTokens(ctx)
	if err != nil {
		return nil, err
	}

	listed := make([]model.Token, 0, len(all))
	for _, t := range all {
		if t.Listed {
			listed = append(listed, t)
		}
	}
	return listed, nil
}
