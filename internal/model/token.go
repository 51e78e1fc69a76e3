package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// oracleDecimals is the fixed-point scale of every oracle rate.
const oracleDecimals = 18

// Token is a listed or unlisted ERC20 known to the sugar contract.
type Token struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Listed   bool   `json:"listed"`
}

// Price is the amount of stable token per one unit of Token.
type Price struct {
	Token Token   `json:"token"`
	Price float64 `json:"price"`
}

// Pretty rounds the price to 5 decimal places for display.
func (p Price) Pretty() float64 {
	return decimal.NewFromFloat(p.Price).Round(5).InexactFloat64()
}

// FromFixedPoint converts an integer amount scaled by 10^decimals into a float.
func FromFixedPoint(value *big.Int, decimals uint8) float64 {
	if value == nil {
		return 0
	}
	return decimal.NewFromBigInt(value, -int32(decimals)).InexactFloat64()
}

// RateToFloat converts an 18-decimal oracle rate into a float.
func RateToFloat(rate *big.Int) float64 {
	return FromFixedPoint(rate, oracleDecimals)
}
