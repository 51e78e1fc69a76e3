package model

import "time"

const (
	secondsPerDay  = 24 * 60 * 60
	secondsPerWeek = 7 * secondsPerDay
	daysPerYear    = 365
)

// SecondsPerWeek scales per-second emissions to a weekly figure.
const SecondsPerWeek = secondsPerWeek

// LiquidityPool is a sugar pool joined against the listed and priced tokens.
// Token, reserve, fee and emission fields are nil when the referenced token
// is outside the priced universe.
type LiquidityPool struct {
	Address          string  `json:"address"`
	Symbol           string  `json:"symbol"`
	IsStable         bool    `json:"is_stable"`
	TotalSupply      float64 `json:"total_supply"`
	Decimals         uint8   `json:"decimals"`
	Token0           *Token  `json:"token0,omitempty"`
	Reserve0         *Amount `json:"reserve0,omitempty"`
	Token1           *Token  `json:"token1,omitempty"`
	Reserve1         *Amount `json:"reserve1,omitempty"`
	Token0Fees       *Amount `json:"token0_fees,omitempty"`
	Token1Fees       *Amount `json:"token1_fees,omitempty"`
	PoolFee          float64 `json:"pool_fee"`
	GaugeTotalSupply float64 `json:"gauge_total_supply"`
	Emissions        *Amount `json:"emissions,omitempty"`
	EmissionsToken   *Token  `json:"emissions_token,omitempty"`
	WeeklyEmissions  *Amount `json:"weekly_emissions,omitempty"`
}

// FeePercentage is the swap fee in percent; pool_fee is in basis points.
func (p LiquidityPool) FeePercentage() float64 {
	return p.PoolFee / 100
}

// VolumePct is the multiplier turning collected fees back into volume.
// It is 0 for fee-less pools.
func (p LiquidityPool) VolumePct() float64 {
	pct := p.FeePercentage()
	if pct == 0 {
		return 0
	}
	return 100 / pct
}

// TotalFees is the stable value of both fee amounts.
func (p LiquidityPool) TotalFees() float64 {
	return p.Token0Fees.InStable() + p.Token1Fees.InStable()
}

// Volume is the stable-denominated volume implied by collected fees.
func (p LiquidityPool) Volume() float64 {
	return p.VolumePct() * p.TotalFees()
}

// Token0Volume is the token0 quantity traded.
func (p LiquidityPool) Token0Volume() float64 {
	return p.Token0Fees.Value() * p.VolumePct()
}

// Token1Volume is the token1 quantity traded.
func (p LiquidityPool) Token1Volume() float64 {
	return p.Token1Fees.Value() * p.VolumePct()
}

// TVL is the stable value of both reserves.
func (p LiquidityPool) TVL() float64 {
	return p.Reserve0.InStable() + p.Reserve1.InStable()
}

// Priced reports whether both pool tokens resolved.
func (p LiquidityPool) Priced() bool {
	return p.Token0 != nil && p.Token1 != nil
}

// APR annualizes a day of emissions against the staked share of tvl.
func (p LiquidityPool) APR(tvl float64) float64 {
	reward := p.Emissions.InStable() * secondsPerDay

	var stakedPct float64
	if p.TotalSupply != 0 {
		stakedPct = 100 * p.GaugeTotalSupply / p.TotalSupply
	}
	stakedTVL := tvl * stakedPct / 100
	if stakedTVL == 0 {
		return 0
	}
	return (reward / stakedTVL) * 100 * daysPerYear
}

// LiquidityPoolEpoch is the latest completed reward epoch of a pool.
type LiquidityPoolEpoch struct {
	PoolAddress string    `json:"pool_address"`
	Timestamp   time.Time `json:"timestamp"`
	Votes       float64   `json:"votes"`
	Emissions   float64   `json:"emissions"`
	Bribes      []Amount  `json:"bribes"`
	Fees        []Amount  `json:"fees"`
}

// TotalFees sums the stable value of the fee rewards.
func (e LiquidityPoolEpoch) TotalFees() float64 {
	return sumInStable(e.Fees)
}

// TotalBribes sums the stable value of the incentives.
func (e LiquidityPoolEpoch) TotalBribes() float64 {
	return sumInStable(e.Bribes)
}

// TotalRewards is fees plus bribes.
func (e LiquidityPoolEpoch) TotalRewards() float64 {
	return e.TotalFees() + e.TotalBribes()
}

func sumInStable(amounts []Amount) float64 {
	var total float64
	for i := range amounts {
		total += amounts[i].InStable()
	}
	return total
}
