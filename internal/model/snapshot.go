package model

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is one collected view of protocol-wide figures.
type Snapshot struct {
	ID          uuid.UUID      `json:"id"`
	TakenAt     time.Time      `json:"taken_at"`
	Protocol    string         `json:"protocol"`
	PoolCount   int            `json:"pool_count"`
	TVL         float64        `json:"tvl"`
	Fees        float64        `json:"fees"`
	Volume      float64        `json:"volume"`
	EpochFees   float64        `json:"epoch_fees"`
	EpochBribes float64        `json:"epoch_bribes"`
	TokenSymbol string         `json:"token_symbol,omitempty"`
	TokenPrice  float64        `json:"token_price,omitempty"`
	Pools       []PoolSnapshot `json:"pools,omitempty"`
}

// Rewards is the epoch fees plus bribes.
func (s Snapshot) Rewards() float64 {
	return s.EpochFees + s.EpochBribes
}

// PoolSnapshot holds per-pool derived figures at snapshot time.
type PoolSnapshot struct {
	Address string  `json:"address"`
	Symbol  string  `json:"symbol"`
	TVL     float64 `json:"tvl"`
	Volume  float64 `json:"volume"`
	Fees    float64 `json:"fees"`
	APR     float64 `json:"apr"`
}

// NewPoolSnapshot derives the snapshot row for p.
func NewPoolSnapshot(p LiquidityPool) PoolSnapshot {
	tvl := p.TVL()
	return PoolSnapshot{
		Address: p.Address,
		Symbol:  p.Symbol,
		TVL:     tvl,
		Volume:  p.Volume(),
		Fees:    p.TotalFees(),
		APR:     p.APR(tvl),
	}
}
