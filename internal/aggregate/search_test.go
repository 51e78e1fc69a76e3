package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sugarWatch/internal/model"
)

func searchable(symbols ...string) []model.LiquidityPool {
	token := &model.Token{Symbol: "T"}
	pools := make([]model.LiquidityPool, len(symbols))
	for i, s := range symbols {
		pools[i] = model.LiquidityPool{Symbol: s, Token0: token, Token1: token}
	}
	return pools
}

func symbols(pools []model.LiquidityPool) []string {
	out := make([]string, len(pools))
	for i, p := range pools {
		out[i] = p.Symbol
	}
	return out
}

func TestSearchExactMatchShortCircuits(t *testing.T) {
	got := SearchPools(searchable("USDC/USDT", "WETH/USDC"), "usdc/usdt", 10)
	assert.Equal(t, []string{"USDC/USDT"}, symbols(got))
}

func TestSearchRanksBySimilarity(t *testing.T) {
	got := SearchPools(searchable("vAMM-OP/USDC", "vAMM-WETH/USDC", "sAMM-USDC/DAI"), "weth usdc", 10)
	require.Len(t, got, 3)
	assert.Equal(t, "vAMM-WETH/USDC", got[0].Symbol)
}

func TestSearchIgnoresTokenOrder(t *testing.T) {
	assert.Equal(t, tokenSort("vAMM-WETH/USDC"), tokenSort("usdc weth vamm"))
	assert.Equal(t, 100.0, similarity(tokenSort("USDC/WETH"), tokenSort("WETH/USDC")))
}

func TestSearchLimit(t *testing.T) {
	got := SearchPools(searchable("A/B", "A/C", "A/D"), "a", 2)
	assert.Len(t, got, 2)
}

func TestSearchStableOnTies(t *testing.T) {
	got := SearchPools(searchable("X/Y", "Y/X"), "x y z", 10)
	assert.Equal(t, []string{"X/Y", "Y/X"}, symbols(got))
}

func TestSearchDuplicateExactMatchesFallBackToRanking(t *testing.T) {
	got := SearchPools(searchable("USDC/USDT", "usdc/usdt", "WETH/USDC"), "USDC/USDT", 10)
	assert.Len(t, got, 3)
}

func TestSearchDefaultLimit(t *testing.T) {
	names := make([]string, 15)
	for i := range names {
		names[i] = "A/B"
	}
	got := SearchPools(searchable(names...), "c", 0)
	assert.Len(t, got, DefaultSearchLimit)
}
