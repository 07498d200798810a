package risk

import (
	"PerpScope/internal/account"
	"PerpScope/internal/math"

	"github.com/gagliardetto/solana-go"
)

// Side labels a position's direction.
type Side string

const (
	SideLong  Side = "Long"
	SideShort Side = "Short"
	SideFlat  Side = "Flat"
)

// Summary is a human-unit view of one position against the current
// market snapshot, for display and logging.
type Summary struct {
	Owner          solana.PublicKey
	Side           Side
	Size           float64
	Collateral     float64
	EntryPrice     float64
	MarkPrice      float64
	HealthRatio    float64
	UnrealizedPnL  float64
	PendingFunding float64
	Liquidatable   bool
}

// Summarize builds a Summary from a decoded position and market state.
func Summarize(pos account.Position, market account.MarketState) Summary {
	health := Health(pos, market.MarkPrice)

	var side Side
	switch {
	case pos.BaseAmount > 0:
		side = SideLong
	case pos.BaseAmount < 0:
		side = SideShort
	default:
		side = SideFlat
	}

	return Summary{
		Owner:          pos.Owner,
		Side:           side,
		Size:           math.FromFixedPoint(pos.BaseAmount),
		Collateral:     math.FromFixedPoint(int64(pos.Collateral)),
		EntryPrice:     math.FromFixedPoint(int64(pos.EntryPrice)),
		MarkPrice:      math.FromFixedPoint(int64(market.MarkPrice)),
		HealthRatio:    health,
		UnrealizedPnL:  math.FromFixedPoint(UnrealizedPnL(pos, market.MarkPrice)),
		PendingFunding: math.FromFixedPoint(PendingFunding(pos, market.FundingIndex)),
		Liquidatable:   Liquidatable(health),
	}
}
