// Package chain is the JSON-RPC connection the sugar adapter calls through.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

const defaultCallTimeout = 30 * time.Second

// Client issues read-only calls against the latest block.
type Client struct {
	rpcClient   *rpc.Client
	ethClient   *ethclient.Client
	callTimeout time.Duration
	logger      *zap.Logger
}

type Option func(*Client)

// WithCallTimeout bounds every eth_call. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Client) { c.callTimeout = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient dials rpcURL.
func NewClient(ctx context.Context, rpcURL string, opts ...Option) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		rpcClient:   rpcClient,
		ethClient:   ethclient.NewClient(rpcClient),
		callTimeout: defaultCallTimeout,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// Head is the chain the client is connected to and its tip.
type Head struct {
	ChainID *big.Int
	Block   uint64
}

// Head reports the chain id and latest block, confirming the endpoint answers.
func (c *Client) Head(ctx context.Context) (Head, error) {
	id, err := c.ethClient.ChainID(ctx)
	if err != nil {
		return Head{}, fmt.Errorf("chain id: %w", err)
	}
	block, err := c.ethClient.BlockNumber(ctx)
	if err != nil {
		return Head{}, fmt.Errorf("block number: %w", err)
	}
	c.logger.Debug("rpc head", zap.String("chain_id", id.String()), zap.Uint64("block", block))
	return Head{ChainID: id, Block: block}, nil
}

// CallContract performs an eth_call. A nil blockNumber reads the latest state.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}
