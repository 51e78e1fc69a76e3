package sugar

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lpTuple mirrors the struct go-ethereum builds for one Lp output.
type lpTuple struct {
	Lp               common.Address
	Symbol           string
	Decimals         uint8
	Stable           bool
	TotalSupply      *big.Int
	Token0           common.Address
	Reserve0         *big.Int
	Claimable0       *big.Int
	Token1           common.Address
	Reserve1         *big.Int
	Claimable1       *big.Int
	Gauge            common.Address
	GaugeTotalSupply *big.Int
	GaugeAlive       bool
	Fee              common.Address
	Bribe            common.Address
	Factory          common.Address
	Emissions        *big.Int
	EmissionsToken   common.Address
	AccountBalance   *big.Int
	AccountEarned    *big.Int
	AccountStaked    *big.Int
	PoolFee          *big.Int
	Token0Fees       *big.Int
	Token1Fees       *big.Int
}

func sampleLp() lpTuple {
	return lpTuple{
		Lp:               weth,
		Symbol:           "vAMM-WETH/USDC",
		Decimals:         18,
		Stable:           false,
		TotalSupply:      big.NewInt(1000),
		Token0:           weth,
		Reserve0:         big.NewInt(11),
		Claimable0:       big.NewInt(0),
		Token1:           usdc,
		Reserve1:         big.NewInt(22),
		Claimable1:       big.NewInt(0),
		Gauge:            op,
		GaugeTotalSupply: big.NewInt(500),
		GaugeAlive:       true,
		Fee:              common.Address{},
		Bribe:            common.Address{},
		Factory:          common.Address{},
		Emissions:        big.NewInt(3),
		EmissionsToken:   velo,
		AccountBalance:   big.NewInt(0),
		AccountEarned:    big.NewInt(0),
		AccountStaked:    big.NewInt(0),
		PoolFee:          big.NewInt(30),
		Token0Fees:       big.NewInt(4),
		Token1Fees:       big.NewInt(5),
	}
}

func TestDecodePools(t *testing.T) {
	pools, err := decodePools([]interface{}{[]lpTuple{sampleLp()}})
	require.NoError(t, err)
	require.Len(t, pools, 1)

	p := pools[0]
	assert.Equal(t, weth, p.Address)
	assert.Equal(t, "vAMM-WETH/USDC", p.Symbol)
	assert.Equal(t, usdc, p.Token1)
	assert.Equal(t, int64(22), p.Reserve1.Int64())
	assert.True(t, p.GaugeAlive)
	assert.Equal(t, velo, p.EmissionsToken)
	assert.Equal(t, int64(30), p.PoolFee.Int64())
	assert.Equal(t, int64(5), p.Token1Fees.Int64())
}

func TestDecodePoolsRoundTripThroughABI(t *testing.T) {
	parsed, err := LpSugarABI()
	require.NoError(t, err)

	method := parsed.Methods[methodPools]
	data, err := method.Outputs.Pack([]lpTuple{sampleLp()})
	require.NoError(t, err)
	values, err := parsed.Unpack(methodPools, data)
	require.NoError(t, err)

	pools, err := decodePools(values)
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, int64(11), pools[0].Reserve0.Int64())
	assert.Equal(t, int64(4), pools[0].Token0Fees.Int64())
}

func TestDecodeArityMismatch(t *testing.T) {
	type shortTuple struct {
		Lp     common.Address
		Symbol string
	}

	_, err := decodePools([]interface{}{[]shortTuple{{Lp: weth, Symbol: "x"}}})
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "lp", decodeErr.Tuple)
	assert.Equal(t, -1, decodeErr.Index)
}

func TestDecodeWrongFieldType(t *testing.T) {
	type badToken struct {
		TokenAddress   common.Address
		Symbol         int
		Decimals       uint8
		AccountBalance *big.Int
		Listed         bool
	}

	_, err := decodeTokens([]interface{}{[]badToken{{TokenAddress: usdc, Symbol: 7}}})
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, tokenSymbol, decodeErr.Index)
	assert.Equal(t, "symbol", decodeErr.Field)
}

func TestDecodeUnexpectedOutputCount(t *testing.T) {
	_, err := decodeEpochs(nil)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "epoch", decodeErr.Tuple)
}

func TestDecodeEmptyList(t *testing.T) {
	tokens, err := decodeTokens([]interface{}{[]tokenTuple{}})
	require.NoError(t, err)
	assert.Empty(t, tokens)
}
