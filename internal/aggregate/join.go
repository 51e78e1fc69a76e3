package aggregate

import (
	"context"
	"math/big"
	"time"

	"sugarWatch/internal/address"
	"sugarWatch/internal/model"
)

// universe is the listed and priced token set a fetch joins against.
type universe struct {
	tokens map[string]model.Token
	prices map[string]model.Price
}

func loadUniverse(ctx context.Context, tokens *TokenRegistry, prices *PriceService) (universe, error) {
	listed, err := tokens.ListedTokens(ctx)
	if err != nil {
		return universe{}, err
	}
	priced, err := prices.Prices(ctx, listed)
	if err != nil {
		return universe{}, err
	}

	u := universe{
		tokens: make(map[string]model.Token, len(listed)),
		prices: make(map[string]model.Price, len(priced)),
	}
	for _, t := range listed {
		u.tokens[t.Address] = t
	}
	for _, p := range priced {
		u.prices[p.Token.Address] = p
	}
	return u, nil
}

func (u universe) token(addr string) *model.Token {
	t, ok := u.tokens[addr]
	if !ok {
		return nil
	}
	return &t
}

func (u universe) amount(addr string, raw *big.Int) *model.Amount {
	return model.BuildAmount(addr, raw, u.tokens, u.prices)
}

// buildPool joins a raw pool. Tokens outside the universe leave their fields nil.
func buildPool(raw model.RawPool, u universe) model.LiquidityPool {
	token0 := address.Canonical(raw.Token0)
	token1 := address.Canonical(raw.Token1)
	emissionsToken := address.Canonical(raw.EmissionsToken)

	pool := model.LiquidityPool{
		Address:          address.Canonical(raw.Address),
		Symbol:           raw.Symbol,
		IsStable:         raw.Stable,
		TotalSupply:      model.FromFixedPoint(raw.TotalSupply, raw.Decimals),
		Decimals:         raw.Decimals,
		Token0:           u.token(token0),
		Reserve0:         u.amount(token0, raw.Reserve0),
		Token1:           u.token(token1),
		Reserve1:         u.amount(token1, raw.Reserve1),
		Token0Fees:       u.amount(token0, raw.Token0Fees),
		Token1Fees:       u.amount(token1, raw.Token1Fees),
		PoolFee:          model.FromFixedPoint(raw.PoolFee, 0),
		GaugeTotalSupply: model.FromFixedPoint(raw.GaugeTotalSupply, raw.Decimals),
		Emissions:        u.amount(emissionsToken, raw.Emissions),
		EmissionsToken:   u.token(emissionsToken),
	}
	if raw.Emissions != nil {
		weekly := new(big.Int).Mul(raw.Emissions, big.NewInt(model.SecondsPerWeek))
		pool.WeeklyEmissions = u.amount(emissionsToken, weekly)
	}
	return pool
}

// buildEpoch joins a raw epoch, dropping line items in unknown tokens.
func buildEpoch(raw model.RawEpoch, u universe) model.LiquidityPoolEpoch {
	epoch := model.LiquidityPoolEpoch{
		PoolAddress: address.Canonical(raw.Pool),
		Votes:       model.FromFixedPoint(raw.Votes, 18),
		Emissions:   model.FromFixedPoint(raw.Emissions, 18),
		Bribes:      u.rewards(raw.Bribes),
		Fees:        u.rewards(raw.Fees),
	}
	if raw.Timestamp != nil {
		epoch.Timestamp = time.Unix(raw.Timestamp.Int64(), 0).UTC()
	}
	return epoch
}

func (u universe) rewards(items []model.RawReward) []model.Amount {
	out := make([]model.Amount, 0, len(items))
	for _, item := range items {
		if amount := u.amount(address.Canonical(item.Token), item.Amount); amount != nil {
			out = append(out, *amount)
		}
	}
	return out
}
