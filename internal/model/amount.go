package model

import "math/big"

// Amount is a decimal-adjusted token quantity with the price it was valued at.
type Amount struct {
	Token  Token   `json:"token"`
	Amount float64 `json:"amount"`
	Price  Price   `json:"price"`
}

// InStable values the amount in the stable reference token.
func (a *Amount) InStable() float64 {
	if a == nil {
		return 0
	}
	return a.Amount * a.Price.Price
}

// Value returns the token quantity, 0 for a missing amount.
func (a *Amount) Value() float64 {
	if a == nil {
		return 0
	}
	return a.Amount
}

// BuildAmount joins a raw on-chain amount with the token and price maps.
// It returns nil when address is missing from either map.
func BuildAmount(address string, raw *big.Int, tokens map[string]Token, prices map[string]Price) *Amount {
	token, ok := tokens[address]
	if !ok {
		return nil
	}
	price, ok := prices[address]
	if !ok {
		return nil
	}
	return &Amount{
		Token:  token,
		Amount: FromFixedPoint(raw, token.Decimals),
		Price:  price,
	}
}
