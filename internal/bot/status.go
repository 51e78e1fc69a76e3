package bot

import (
	"context"
	"fmt"
	"strconv"

	"sugarWatch/internal/metrics"
	"sugarWatch/internal/model"
)

// Status is what a ticker bot displays: its nickname and watching status.
// Empty fields are left unchanged.
type Status struct {
	Nick     string
	Presence string
}

// StatusFunc computes the next status.
type StatusFunc func(ctx context.Context) (Status, error)

// Pricer prices tokens in the stable token.
type Pricer interface {
	Prices(ctx context.Context, tokens []model.Token) ([]model.Price, error)
}

// PoolLister lists priced pools.
type PoolLister interface {
	Pools(ctx context.Context) ([]model.LiquidityPool, error)
}

// EpochLister lists the latest epochs.
type EpochLister interface {
	Latest(ctx context.Context) ([]model.LiquidityPoolEpoch, error)
}

// PriceStatus shows the price of token, e.g. "~$0.12345 / VELO".
func PriceStatus(pricer Pricer, token model.Token) StatusFunc {
	return func(ctx context.Context) (Status, error) {
		prices, err := pricer.Prices(ctx, []model.Token{token})
		if err != nil {
			return Status{}, err
		}
		if len(prices) != 1 {
			return Status{}, fmt.Errorf("expected 1 price, got %d", len(prices))
		}
		return Status{
			Nick: fmt.Sprintf("~$%s / %s", roundPrice(prices[0]), token.Symbol),
		}, nil
	}
}

// PricePresence is the fixed status of the price bot.
func PricePresence(stable model.Token) string {
	return fmt.Sprintf("Based on %s onchain quote", stable.Symbol)
}

// TVLStatus shows the protocol TVL in millions.
func TVLStatus(pools PoolLister) StatusFunc {
	return func(ctx context.Context) (Status, error) {
		all, err := pools.Pools(ctx)
		if err != nil {
			return Status{}, err
		}
		return Status{Nick: AmountToM(metrics.TVL(all))}, nil
	}
}

// TVLPresence is the fixed status of the TVL bot.
func TVLPresence(protocol string) string {
	return "TVL " + protocol
}

// FeesStatus shows pool fees in thousands and the pool count.
func FeesStatus(pools PoolLister) StatusFunc {
	return func(ctx context.Context) (Status, error) {
		all, err := pools.Pools(ctx)
		if err != nil {
			return Status{}, err
		}
		return Status{
			Nick:     "Fees: " + AmountToK(metrics.TotalFees(all)),
			Presence: fmt.Sprintf("%d pools", len(all)),
		}, nil
	}
}

// FeesPresence is shown until the first fees update.
func FeesPresence(protocol string) string {
	return "Watching fees for " + protocol
}

// RewardsStatus shows the latest epoch rewards split into fees and incentives.
func RewardsStatus(epochs EpochLister) StatusFunc {
	return func(ctx context.Context) (Status, error) {
		latest, err := epochs.Latest(ctx)
		if err != nil {
			return Status{}, err
		}
		r := metrics.RewardsOf(latest)
		return Status{
			Nick:     "Rewards: " + AmountToK(r.Total),
			Presence: fmt.Sprintf("%s fees & %s incentives", AmountToK(r.Fees), AmountToK(r.Bribes)),
		}, nil
	}
}

// RewardsPresence is shown until the first rewards update.
func RewardsPresence(protocol string) string {
	return "incentives for " + protocol
}

func roundPrice(p model.Price) string {
	return strconv.FormatFloat(p.Pretty(), 'f', -1, 64)
}
