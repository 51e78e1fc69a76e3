// Package aggregate joins raw sugar tuples with token and price data into
// priced pools and epochs.
package aggregate

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"sugarWatch/internal/model"
)

// TokenSource lists the tokens known to the sugar contract.
type TokenSource interface {
	Tokens(ctx context.Context, limit, offset int, account common.Address) ([]model.RawToken, error)
}

// RateSource quotes token rates against a stable token.
type RateSource interface {
	RatesWithConnectors(ctx context.Context, tokens, connectors []common.Address, stable common.Address) ([]*big.Int, error)
}

// PoolSource pages through the sugar pool list.
type PoolSource interface {
	Pools(ctx context.Context, limit, offset int) ([]model.RawPool, error)
}

// EpochSource pages through the latest reward epochs.
type EpochSource interface {
	LatestEpochs(ctx context.Context, limit, offset int) ([]model.RawEpoch, error)
}
