// Package risk computes collateralization health and unrealized PnL
// from decoded account state. Everything here is advisory: the program
// re-validates authoritatively before any liquidation executes.
package risk

import (
	stdmath "math"

	"PerpScope/internal/account"
	"PerpScope/internal/math"
)

// MinCollateralRatio is the 150% maintenance threshold. Positions with
// health below this are considered liquidatable by the monitor. Mirrors
// the program's MIN_COLLATERAL_RATIO; the program's own check remains
// the authority.
const MinCollateralRatio = 1.5

// LiquidationPenaltyRate is the fixed-point share of collateral paid to
// the liquidator (10%).
const LiquidationPenaltyRate uint64 = 100_000_000

// Health returns collateral divided by absolute notional value. A flat
// position can never be unhealthy, so it reports +Inf; likewise when
// the notional truncates to zero, which avoids a division by zero
// rather than propagating one. Health is a display ratio, so the final
// division is real-valued, not fixed-point.
func Health(pos account.Position, markPrice uint64) float64 {
	if pos.BaseAmount == 0 {
		return stdmath.Inf(1)
	}

	notional := math.ComputeNotional(pos.BaseAmount, markPrice)
	if notional == 0 {
		return stdmath.Inf(1)
	}

	return float64(pos.Collateral) / float64(notional)
}

// UnrealizedPnL returns the position's mark-to-market PnL as a signed
// fixed-point amount. Zero when flat.
func UnrealizedPnL(pos account.Position, markPrice uint64) int64 {
	return math.ComputeUnrealizedPnL(pos.BaseAmount, pos.EntryPrice, markPrice)
}

// PendingFunding returns the funding the position owes against the
// market's current index. Positive = position pays.
func PendingFunding(pos account.Position, fundingIndex int64) int64 {
	return math.ComputeFundingPayment(pos.BaseAmount, fundingIndex, pos.LastFundingIndex)
}

// EffectiveCollateral is posted collateral adjusted for pending funding
// and unrealized PnL, floored at zero. This is the collateral figure
// the program's liquidate path actually measures against the threshold.
func EffectiveCollateral(pos account.Position, markPrice uint64, fundingIndex int64) uint64 {
	collateral := int64(pos.Collateral)

	collateral -= PendingFunding(pos, fundingIndex)
	collateral += UnrealizedPnL(pos, markPrice)

	if collateral < 0 {
		return 0
	}
	return uint64(collateral)
}

// Liquidatable reports whether a health ratio breaches the maintenance
// threshold.
func Liquidatable(health float64) bool {
	return health < MinCollateralRatio
}

// LiquidationPenalty returns the reward a liquidator would receive for
// liquidating a position with the given collateral.
func LiquidationPenalty(collateral uint64) uint64 {
	return uint64(math.MulDiv(int64(collateral), int64(LiquidationPenaltyRate), math.Precision))
}
