package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RawToken is the LpSugar Token tuple.
type RawToken struct {
	Address        common.Address
	Symbol         string
	Decimals       uint8
	AccountBalance *big.Int
	Listed         bool
}

// RawPool is the LpSugar Lp tuple. Account-scoped fields are dropped.
type RawPool struct {
	Address          common.Address
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
	FeeContract      common.Address
	BribeContract    common.Address
	Factory          common.Address
	Emissions        *big.Int
	EmissionsToken   common.Address
	PoolFee          *big.Int
	Token0Fees       *big.Int
	Token1Fees       *big.Int
}

// RawReward is one LpEpochBribe line item.
type RawReward struct {
	Token  common.Address
	Amount *big.Int
}

// RawEpoch is the LpSugar LpEpoch tuple.
type RawEpoch struct {
	Timestamp *big.Int
	Pool      common.Address
	Votes     *big.Int
	Emissions *big.Int
	Bribes    []RawReward
	Fees      []RawReward
}
