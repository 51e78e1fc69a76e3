// Package metrics derives protocol-wide figures from priced pools and epochs.
package metrics

import (
	"sort"

	"sugarWatch/internal/model"
)

// Rewards splits the latest epoch rewards into fees and incentives.
type Rewards struct {
	Fees   float64 `json:"fees"`
	Bribes float64 `json:"bribes"`
	Total  float64 `json:"total"`
}

// TVL sums the stable value of every resolved reserve.
func TVL(pools []model.LiquidityPool) float64 {
	var total float64
	for i := range pools {
		total += pools[i].TVL()
	}
	return total
}

// TotalFees sums the stable value of the fees collected by pools.
func TotalFees(pools []model.LiquidityPool) float64 {
	var total float64
	for i := range pools {
		total += pools[i].TotalFees()
	}
	return total
}

// TotalVolume sums the volume implied by each pool's fees.
func TotalVolume(pools []model.LiquidityPool) float64 {
	var total float64
	for i := range pools {
		total += pools[i].Volume()
	}
	return total
}

// RewardsOf totals fees and bribes across epochs.
func RewardsOf(epochs []model.LiquidityPoolEpoch) Rewards {
	var r Rewards
	for i := range epochs {
		r.Fees += epochs[i].TotalFees()
		r.Bribes += epochs[i].TotalBribes()
	}
	r.Total = r.Fees + r.Bribes
	return r
}

// TopByTVL returns up to n pools ordered by descending TVL. pools is not modified.
func TopByTVL(pools []model.LiquidityPool, n int) []model.LiquidityPool {
	sorted := make([]model.LiquidityPool, len(pools))
	copy(sorted, pools)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TVL() > sorted[j].TVL()
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
