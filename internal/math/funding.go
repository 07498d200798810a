package math

// ComputeFundingPayment calculates the funding a position owes (or is
// owed) between its last settled funding index and the market's current
// index: baseAmount * (fundingIndex - lastFundingIndex) / Precision.
// Positive = the position pays, negative = the position receives.
// The program applies exactly this amount before any open, close or
// liquidate touches collateral, so the client must mirror it to judge
// effective collateral.
func ComputeFundingPayment(baseAmount, fundingIndex, lastFundingIndex int64) int64 {
	if baseAmount == 0 {
		return 0
	}
	return MulDiv(baseAmount, fundingIndex-lastFundingIndex, Precision)
}

// ComputeFundingIncrement returns the index increase produced by a
// funding rate held constant over a number of slots. Useful for
// estimating the next settlement before calling the update-funding
// instruction.
func ComputeFundingIncrement(ratePerSlot int64, slotsElapsed uint64) int64 {
	return ratePerSlot * int64(slotsElapsed)
}
