package sugar

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sugarAddr  = common.HexToAddress("0x3b21531bd6d3A6e0a1A4F1c1bc8f3A45F2f6D0b2")
	oracleAddr = common.HexToAddress("0x395942C2049604a314d39F370Dfb8D87AAC89e16")
	usdc       = common.HexToAddress("0x7F5c764cBc14f9669B88837ca1490cCa17c31607")
	velo       = common.HexToAddress("0x9560e827aF36c94D2Ac33a39bCE1Fe78631088Db")
	weth       = common.HexToAddress("0x4200000000000000000000000000000000000006")
	op         = common.HexToAddress("0x4200000000000000000000000000000000000042")
)

type fakeCaller struct {
	responses map[string][]byte
	err       error
	calls     []ethereum.CallMsg
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls = append(f.calls, msg)
	if f.err != nil {
		return nil, f.err
	}
	return f.responses[string(msg.Data[:4])], nil
}

func (f *fakeCaller) respond(t *testing.T, parsed abi.ABI, method string, values ...interface{}) {
	t.Helper()
	m := parsed.Methods[method]
	data, err := m.Outputs.Pack(values...)
	require.NoError(t, err)
	if f.responses == nil {
		f.responses = make(map[string][]byte)
	}
	f.responses[string(m.ID)] = data
}

func newTestClient(t *testing.T, caller ContractCaller, maxBatch int) *Client {
	t.Helper()
	c, err := NewClient(caller, Config{
		SugarAddress:  sugarAddr,
		OracleAddress: oracleAddr,
		MaxBatch:      maxBatch,
	})
	require.NoError(t, err)
	return c
}

type tokenTuple struct {
	TokenAddress   common.Address
	Symbol         string
	Decimals       uint8
	AccountBalance *big.Int
	Listed         bool
}

type rewardTuple struct {
	Token  common.Address
	Amount *big.Int
}

type epochTuple struct {
	Ts        *big.Int
	Lp        common.Address
	Votes     *big.Int
	Emissions *big.Int
	Bribes    []rewardTuple
	Fees      []rewardTuple
}

func TestTokens(t *testing.T) {
	parsed, err := LpSugarABI()
	require.NoError(t, err)

	caller := &fakeCaller{}
	caller.respond(t, parsed, methodTokens, []tokenTuple{
		{TokenAddress: usdc, Symbol: "USDC", Decimals: 6, AccountBalance: big.NewInt(0), Listed: true},
		{TokenAddress: velo, Symbol: "VELO", Decimals: 18, AccountBalance: big.NewInt(0), Listed: false},
	})
	c := newTestClient(t, caller, 0)

	tokens, err := c.Tokens(context.Background(), 2000, 0, common.Address{})
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, usdc, tokens[0].Address)
	assert.Equal(t, "USDC", tokens[0].Symbol)
	assert.Equal(t, uint8(6), tokens[0].Decimals)
	assert.True(t, tokens[0].Listed)
	assert.False(t, tokens[1].Listed)

	require.Len(t, caller.calls, 1)
	assert.Equal(t, sugarAddr, *caller.calls[0].To)
	args, err := parsed.Methods[methodTokens].Inputs.Unpack(caller.calls[0].Data[4:])
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(2000).Cmp(args[0].(*big.Int)))
	assert.Equal(t, 0, big.NewInt(0).Cmp(args[1].(*big.Int)))
}

func TestLatestEpochs(t *testing.T) {
	parsed, err := LpSugarABI()
	require.NoError(t, err)

	caller := &fakeCaller{}
	caller.respond(t, parsed, methodEpochs, []epochTuple{
		{
			Ts:        big.NewInt(1_700_000_000),
			Lp:        weth,
			Votes:     big.NewInt(10),
			Emissions: big.NewInt(20),
			Bribes:    []rewardTuple{{Token: op, Amount: big.NewInt(5)}},
			Fees: []rewardTuple{
				{Token: usdc, Amount: big.NewInt(7)},
				{Token: weth, Amount: big.NewInt(9)},
			},
		},
	})
	c := newTestClient(t, caller, 0)

	epochs, err := c.LatestEpochs(context.Background(), 100, 0)
	require.NoError(t, err)
	require.Len(t, epochs, 1)
	assert.Equal(t, int64(1_700_000_000), epochs[0].Timestamp.Int64())
	assert.Equal(t, weth, epochs[0].Pool)
	require.Len(t, epochs[0].Bribes, 1)
	assert.Equal(t, op, epochs[0].Bribes[0].Token)
	require.Len(t, epochs[0].Fees, 2)
	assert.Equal(t, int64(9), epochs[0].Fees[1].Amount.Int64())
}

func TestRatesWithConnectors(t *testing.T) {
	parsed, err := OracleABI()
	require.NoError(t, err)

	e18 := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	caller := &fakeCaller{}
	caller.respond(t, parsed, methodRates, []*big.Int{e18, new(big.Int).Mul(e18, big.NewInt(2))})
	c := newTestClient(t, caller, 0)

	rates, err := c.RatesWithConnectors(context.Background(),
		[]common.Address{velo, weth}, []common.Address{op}, usdc)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, 0, e18.Cmp(rates[0]))

	require.Len(t, caller.calls, 1)
	assert.Equal(t, oracleAddr, *caller.calls[0].To)
	args, err := parsed.Methods[methodRates].Inputs.Unpack(caller.calls[0].Data[4:])
	require.NoError(t, err)
	assert.Equal(t, uint8(2), args[0])
	assert.Equal(t, []common.Address{velo, weth, op, usdc}, args[1])
}

func TestRatesCountMismatch(t *testing.T) {
	parsed, err := OracleABI()
	require.NoError(t, err)

	caller := &fakeCaller{}
	caller.respond(t, parsed, methodRates, []*big.Int{big.NewInt(1)})
	c := newTestClient(t, caller, 0)

	_, err = c.RatesWithConnectors(context.Background(), []common.Address{velo, weth}, nil, usdc)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "rates", decodeErr.Tuple)
}

func TestRatesBatchTooLarge(t *testing.T) {
	caller := &fakeCaller{}
	c := newTestClient(t, caller, 2)

	_, err := c.RatesWithConnectors(context.Background(), []common.Address{velo, weth, op}, nil, usdc)
	require.ErrorIs(t, err, ErrBatchTooLarge)
	assert.Empty(t, caller.calls)
}

func TestMaxBatchClampedToOracleLimit(t *testing.T) {
	c := newTestClient(t, &fakeCaller{}, 1000)
	assert.Equal(t, oracleMaxBatch, c.MaxBatch())
}

func TestTransportFailureIsRPCError(t *testing.T) {
	cause := errors.New("connection refused")
	c := newTestClient(t, &fakeCaller{err: cause}, 0)

	_, err := c.Pools(context.Background(), 10, 0)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, methodPools, rpcErr.Method)
	assert.ErrorIs(t, err, cause)
}
