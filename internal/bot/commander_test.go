package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sugarWatch/internal/aggregate"
	"sugarWatch/internal/model"
)

const (
	appBase  = "https://velodrome.finance"
	poolAddr = "0xaAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa"
)

type fakeFinder struct {
	pools      map[string]model.LiquidityPool
	results    []model.LiquidityPool
	err        error
	searchedAs string
	limit      int
}

func (f *fakeFinder) ByAddress(_ context.Context, addr string) (*model.LiquidityPool, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.pools[addr]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeFinder) Search(_ context.Context, query string, limit int) ([]model.LiquidityPool, error) {
	f.searchedAs = query
	f.limit = limit
	return f.results, f.err
}

func samplePool() model.LiquidityPool {
	return model.LiquidityPool{
		Address:     poolAddr,
		Symbol:      "vAMM-USDC/VELO",
		TotalSupply: 100,
		PoolFee:     30,
		Token0:      &usdc,
		Reserve0:    usd(usdc, 1000),
		Token1:      &velo,
		Reserve1:    usd(velo, 2000),
		Token0Fees:  usd(usdc, 3),
		Token1Fees:  usd(velo, 3),
	}
}

func TestHandlePoolByAddress(t *testing.T) {
	finder := &fakeFinder{pools: map[string]model.LiquidityPool{poolAddr: samplePool()}}
	c := NewCommander(finder, appBase, nil)

	reply, err := c.HandlePool(context.Background(), "  "+poolAddr+" ")
	require.NoError(t, err)
	assert.Empty(t, reply.Choices)
	assert.Contains(t, reply.Content, "vAMM-USDC/VELO")
	assert.Empty(t, finder.searchedAs)
}

func TestHandlePoolUnknownAddress(t *testing.T) {
	c := NewCommander(&fakeFinder{}, appBase, nil)

	reply, err := c.HandlePool(context.Background(), poolAddr)
	require.NoError(t, err)
	assert.Equal(t, "No pool found with this address: "+poolAddr, reply.Content)
}

func TestHandlePoolSearch(t *testing.T) {
	pool := samplePool()
	finder := &fakeFinder{results: []model.LiquidityPool{pool}}
	c := NewCommander(finder, appBase, nil)

	reply, err := c.HandlePool(context.Background(), "usdc/velo")
	require.NoError(t, err)
	assert.Equal(t, "usdc/velo", finder.searchedAs)
	assert.Equal(t, aggregate.DefaultSearchLimit, finder.limit)
	assert.Equal(t, choosePoolPrompt, reply.Content)
	assert.Equal(t, []Choice{{Label: "vAMM-USDC/VELO", Value: poolAddr}}, reply.Choices)
}

func TestHandlePoolNoResults(t *testing.T) {
	c := NewCommander(&fakeFinder{}, appBase, nil)

	reply, err := c.HandlePool(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Equal(t, "No pools found for: nothing", reply.Content)
	assert.Empty(t, reply.Choices)
}

func TestHandlePoolError(t *testing.T) {
	c := NewCommander(&fakeFinder{err: errors.New("rpc down")}, appBase, nil)

	_, err := c.HandlePool(context.Background(), "velo")
	require.Error(t, err)
	_, err = c.HandleSelect(context.Background(), poolAddr)
	require.Error(t, err)
}

func TestRenderPoolStats(t *testing.T) {
	out := RenderPoolStats(samplePool(), appBase)

	assert.Contains(t, out, "> **vAMM-USDC/VELO ● Fee 0.30 % ● 0.00 % APR**\n")
	assert.Contains(t, out, "> - ~$3,000.00 TVL\n")
	assert.Contains(t, out, ">   - 1,000.00 USDC\n")
	assert.Contains(t, out, ">   - 2,000.00 VELO\n")
	assert.Contains(t, out, "> - ~$2,000.00 volume this epoch\n")
	assert.Contains(t, out, "> - ~$6.00 fees this epoch\n")
	assert.Contains(t, out, appBase+"/deposit?stable=false&token0="+usdc.Address+"&token1="+velo.Address)
	assert.Contains(t, out, appBase+"/incentivize?pool="+poolAddr)
}

func TestRenderPoolStatsMissingToken(t *testing.T) {
	pool := samplePool()
	pool.Token1 = nil
	pool.Reserve1 = nil

	out := RenderPoolStats(pool, appBase)
	assert.Contains(t, out, ">   - 0.00 ?\n")
	assert.NotContains(t, out, "token1=")
}
