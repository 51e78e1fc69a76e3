package model

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	usdcAddr = "0x7F5c764cBc14f9669B88837ca1490cCa17c31607"
	veloAddr = "0x9560e827aF36c94D2Ac33a39bCE1Fe78631088Db"
	lostAddr = "0x1111111111111111111111111111111111111111"
)

func e18(v int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func universe() (map[string]Token, map[string]Price) {
	usdc := Token{Address: usdcAddr, Symbol: "USDC", Decimals: 6, Listed: true}
	velo := Token{Address: veloAddr, Symbol: "VELO", Decimals: 18, Listed: true}
	tokens := map[string]Token{usdcAddr: usdc, veloAddr: velo}
	prices := map[string]Price{
		usdcAddr: {Token: usdc, Price: 1},
		veloAddr: {Token: velo, Price: 0.5},
	}
	return tokens, prices
}

func stableAmount(v float64) *Amount {
	return &Amount{Amount: v, Price: Price{Price: 1}}
}

func TestBuildAmount(t *testing.T) {
	tokens, prices := universe()

	amount := BuildAmount(veloAddr, e18(3), tokens, prices)
	require.NotNil(t, amount)
	assert.Equal(t, 3.0, amount.Amount)
	assert.Equal(t, 1.5, amount.InStable())

	usdc := BuildAmount(usdcAddr, big.NewInt(2_500_000), tokens, prices)
	require.NotNil(t, usdc)
	assert.Equal(t, 2.5, usdc.Amount)
}

func TestBuildAmountMissingDegrades(t *testing.T) {
	tokens, prices := universe()

	assert.Nil(t, BuildAmount(lostAddr, e18(1), tokens, prices))

	delete(prices, veloAddr)
	assert.Nil(t, BuildAmount(veloAddr, e18(1), tokens, prices), "token without price")

	var missing *Amount
	assert.Zero(t, missing.InStable())
	assert.Zero(t, missing.Value())
}

func TestPricePretty(t *testing.T) {
	p := Price{Price: 0.123456789}
	assert.Equal(t, 0.12346, p.Pretty())
}

func TestRateToFloat(t *testing.T) {
	rate, ok := new(big.Int).SetString("1250000000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, 1.25, RateToFloat(rate))
	assert.Zero(t, RateToFloat(nil))
}

func TestPoolVolumeAndFees(t *testing.T) {
	pool := LiquidityPool{
		PoolFee:    30,
		Token0Fees: stableAmount(3),
		Token1Fees: &Amount{Amount: 2, Price: Price{Price: 0.5}},
	}

	assert.InDelta(t, 0.3, pool.FeePercentage(), 1e-12)
	assert.InDelta(t, 333.333333, pool.VolumePct(), 1e-5)
	assert.InDelta(t, 4.0, pool.TotalFees(), 1e-12)
	assert.InDelta(t, 4.0*100/0.3, pool.Volume(), 1e-9)
	assert.InDelta(t, 3*100/0.3, pool.Token0Volume(), 1e-9)
	assert.InDelta(t, 2*100/0.3, pool.Token1Volume(), 1e-9)
}

func TestPoolZeroFeeHasNoVolume(t *testing.T) {
	pool := LiquidityPool{PoolFee: 0, Token0Fees: stableAmount(10)}
	assert.Zero(t, pool.VolumePct())
	assert.Zero(t, pool.Volume())
	assert.Zero(t, pool.Token0Volume())
}

func TestPoolMissingFeesContributeZero(t *testing.T) {
	pool := LiquidityPool{PoolFee: 5, Token1Fees: stableAmount(1)}
	assert.InDelta(t, 1.0, pool.TotalFees(), 1e-12)
	assert.Zero(t, pool.Token0Volume())
}

func TestPoolAPR(t *testing.T) {
	pool := LiquidityPool{
		TotalSupply:      1000,
		GaugeTotalSupply: 500,
		Emissions:        &Amount{Amount: 0.001, Price: Price{Price: 2}},
	}
	// reward/day = 0.002 * 86400 = 172.8; staked tvl = 10000 * 50% = 5000
	want := (172.8 / 5000) * 100 * 365
	assert.InDelta(t, want, pool.APR(10000), 1e-9)
}

func TestPoolAPRZeroGuards(t *testing.T) {
	emitting := &Amount{Amount: 1, Price: Price{Price: 1}}

	noSupply := LiquidityPool{TotalSupply: 0, GaugeTotalSupply: 10, Emissions: emitting}
	assert.Zero(t, noSupply.APR(1000))

	nothingStaked := LiquidityPool{TotalSupply: 10, GaugeTotalSupply: 0, Emissions: emitting}
	assert.Zero(t, nothingStaked.APR(1000))

	noTVL := LiquidityPool{TotalSupply: 10, GaugeTotalSupply: 10, Emissions: emitting}
	assert.Zero(t, noTVL.APR(0))

	noEmissions := LiquidityPool{TotalSupply: 10, GaugeTotalSupply: 10}
	assert.Zero(t, noEmissions.APR(1000))
}

func TestPoolTVLSkipsMissingReserves(t *testing.T) {
	pool := LiquidityPool{Reserve0: stableAmount(100)}
	assert.Equal(t, 100.0, pool.TVL())
	assert.False(t, pool.Priced())
}

func TestEpochTotals(t *testing.T) {
	epoch := LiquidityPoolEpoch{
		Fees:   []Amount{*stableAmount(10), {Amount: 4, Price: Price{Price: 0.5}}},
		Bribes: []Amount{*stableAmount(5)},
	}
	assert.Equal(t, 12.0, epoch.TotalFees())
	assert.Equal(t, 5.0, epoch.TotalBribes())
	assert.Equal(t, 17.0, epoch.TotalRewards())
	assert.Zero(t, LiquidityPoolEpoch{}.TotalRewards())
}

func TestNewPoolSnapshot(t *testing.T) {
	pool := LiquidityPool{
		Address:    veloAddr,
		Symbol:     "vAMM-VELO/USDC",
		PoolFee:    100,
		Reserve0:   stableAmount(60),
		Reserve1:   stableAmount(40),
		Token0Fees: stableAmount(1),
	}
	snap := NewPoolSnapshot(pool)
	assert.Equal(t, 100.0, snap.TVL)
	assert.Equal(t, 1.0, snap.Fees)
	assert.InDelta(t, 100.0, snap.Volume, 1e-9)
	assert.Zero(t, snap.APR)
}
