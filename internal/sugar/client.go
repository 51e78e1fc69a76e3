package sugar

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"sugarWatch/internal/model"
	"sugarWatch/internal/telemetry"
)

// oracleMaxBatch is the hard limit of the oracle's uint8 source length.
const oracleMaxBatch = 255

// ContractCaller issues read-only contract calls. *chain.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Config locates the sugar and oracle contracts.
type Config struct {
	SugarAddress  common.Address
	OracleAddress common.Address
	// MaxBatch caps the number of tokens per rate request.
	MaxBatch int
	// Optional ABI override files.
	SugarABIPath  string
	OracleABIPath string
}

// Client reads raw tuples from the LpSugar contract and rates from the price oracle.
type Client struct {
	caller    ContractCaller
	cfg       Config
	sugarABI  abi.ABI
	oracleABI abi.ABI
	metrics   *telemetry.Metrics
	logger    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records every contract call on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a sugar client.
func NewClient(caller ContractCaller, cfg Config, opts ...Option) (*Client, error) {
	if caller == nil {
		return nil, fmt.Errorf("contract caller is nil")
	}
	if cfg.MaxBatch <= 0 || cfg.MaxBatch > oracleMaxBatch {
		cfg.MaxBatch = oracleMaxBatch
	}

	sugarABI, err := loadABI(cfg.SugarABIPath, LpSugarABI, methodTokens, methodPools, methodEpochs)
	if err != nil {
		return nil, fmt.Errorf("sugar abi: %w", err)
	}
	oracleABI, err := loadABI(cfg.OracleABIPath, OracleABI, methodRates)
	if err != nil {
		return nil, fmt.Errorf("oracle abi: %w", err)
	}

	c := &Client{
		caller:    caller,
		cfg:       cfg,
		sugarABI:  sugarABI,
		oracleABI: oracleABI,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MaxBatch returns the effective rate batch limit.
func (c *Client) MaxBatch() int {
	return c.cfg.MaxBatch
}

// Tokens returns up to limit token tuples starting at offset.
func (c *Client) Tokens(ctx context.Context, limit, offset int, account common.Address) ([]model.RawToken, error) {
	values, err := c.call(ctx, c.cfg.SugarAddress, c.sugarABI, methodTokens,
		big.NewInt(int64(limit)), big.NewInt(int64(offset)), account)
	if err != nil {
		return nil, err
	}
	return decodeTokens(values)
}

// Pools returns up to limit pool tuples starting at offset.
func (c *Client) Pools(ctx context.Context, limit, offset int) ([]model.RawPool, error) {
	values, err := c.call(ctx, c.cfg.SugarAddress, c.sugarABI, methodPools,
		big.NewInt(int64(limit)), big.NewInt(int64(offset)), common.Address{})
	if err != nil {
		return nil, err
	}
	return decodePools(values)
}

// LatestEpochs returns up to limit latest-epoch tuples starting at offset.
func (c *Client) LatestEpochs(ctx context.Context, limit, offset int) ([]model.RawEpoch, error) {
	values, err := c.call(ctx, c.cfg.SugarAddress, c.sugarABI, methodEpochs,
		big.NewInt(int64(limit)), big.NewInt(int64(offset)))
	if err != nil {
		return nil, err
	}
	return decodeEpochs(values)
}

// RatesWithConnectors returns one 18-decimal rate per token, in order,
// quoted in stable and routed through connectors.
func (c *Client) RatesWithConnectors(ctx context.Context, tokens, connectors []common.Address, stable common.Address) ([]*big.Int, error) {
	if len(tokens) > c.cfg.MaxBatch {
		return nil, fmt.Errorf("%w: %d tokens, limit %d", ErrBatchTooLarge, len(tokens), c.cfg.MaxBatch)
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	route := make([]common.Address, 0, len(tokens)+len(connectors)+1)
	route = append(route, tokens...)
	route = append(route, connectors...)
	route = append(route, stable)

	values, err := c.call(ctx, c.cfg.OracleAddress, c.oracleABI, methodRates, uint8(len(tokens)), route)
	if err != nil {
		return nil, err
	}
	rates, err := decodeRates(values)
	if err != nil {
		return nil, err
	}
	if len(rates) != len(tokens) {
		return nil, &DecodeError{
			Tuple: "rates",
			Index: -1,
			Err:   fmt.Errorf("expected %d rates, got %d", len(tokens), len(rates)),
		}
	}
	return rates, nil
}

func (c *Client) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) (values []interface{}, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveRPC(method, start, err)
	}()

	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := c.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, &RPCError{Method: method, Err: err}
	}
	values, err = parsed.Unpack(method, resp)
	if err != nil {
		return nil, &DecodeError{Tuple: method, Index: -1, Err: err}
	}
	c.logger.Debug("contract call",
		zap.String("method", method),
		zap.Int("bytes", len(resp)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return values, nil
}
