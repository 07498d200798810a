package math_test

import (
	stdmath "math"
	"testing"

	"PerpScope/internal/math"
)

// ============================================================================
// Test: fixed-point conversion
// ============================================================================

func TestToFixedPoint(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{100.0, 100_000_000_000},
		{100.50, 100_500_000_000},
		{0.01, 10_000_000},
		{0, 0},
		{-2.5, -2_500_000_000},
	}
	for _, c := range cases {
		if got := math.ToFixedPoint(c.in); got != c.want {
			t.Errorf("ToFixedPoint(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFromFixedPoint(t *testing.T) {
	cases := []struct {
		in   int64
		want float64
	}{
		{100_000_000_000, 100.0},
		{100_500_000_000, 100.50},
		{10_000_000, 0.01},
		{-2_500_000_000, -2.5},
	}
	for _, c := range cases {
		if got := math.FromFixedPoint(c.in); stdmath.Abs(got-c.want) > 1e-9 {
			t.Errorf("FromFixedPoint(%d) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestConversionRoundTrip(t *testing.T) {
	// Exact for values with <= 9 fractional digits in the safe range.
	for _, v := range []float64{0, 1, 99.000000001, 1234.56789, -0.000000001} {
		back := math.FromFixedPoint(math.ToFixedPoint(v))
		if stdmath.Abs(back-v) > 1e-9 {
			t.Errorf("round trip %v -> %v exceeds 1e-9", v, back)
		}
	}
}

// ============================================================================
// Test: 128-bit mul/div
// ============================================================================

func TestMulDiv_TruncatesTowardZero(t *testing.T) {
	if got := math.MulDiv(7, 1, 2); got != 3 {
		t.Errorf("MulDiv(7,1,2) = %d, want 3", got)
	}
	if got := math.MulDiv(-7, 1, 2); got != -3 {
		t.Errorf("MulDiv(-7,1,2) = %d, want -3 (truncate toward zero)", got)
	}
}

func TestMulDiv_Int128Intermediate(t *testing.T) {
	// 3e9 * 4e9 overflows int64; the intermediate must not.
	got := math.MulDiv(3_000_000_000, 4_000_000_000, math.Precision)
	if got != 12_000_000_000 {
		t.Errorf("got %d, want 12_000_000_000", got)
	}
}

func TestComputeNotional(t *testing.T) {
	got := math.ComputeNotional(1_000_000_000, 101_000_000_000)
	if got != 101_000_000_000 {
		t.Errorf("long notional = %d, want 101_000_000_000", got)
	}

	// Shorts contribute by absolute size.
	got = math.ComputeNotional(-2_000_000_000, 50_000_000_000)
	if got != 100_000_000_000 {
		t.Errorf("short notional = %d, want 100_000_000_000", got)
	}

	if got := math.ComputeNotional(1, 100); got != 0 {
		t.Errorf("tiny notional = %d, want 0 (truncated)", got)
	}
}

// ============================================================================
// Test: unrealized PnL
// ============================================================================

func TestComputeUnrealizedPnL_Long(t *testing.T) {
	// 1.0 long, entry $100.50, mark $101.00 -> +0.5
	got := math.ComputeUnrealizedPnL(1_000_000_000, 100_500_000_000, 101_000_000_000)
	if got != 500_000_000 {
		t.Errorf("got %d, want 500_000_000", got)
	}
}

func TestComputeUnrealizedPnL_Short(t *testing.T) {
	// 1.0 short, entry $100, mark $99 -> +1.0
	got := math.ComputeUnrealizedPnL(-1_000_000_000, 100_000_000_000, 99_000_000_000)
	if got != 1_000_000_000 {
		t.Errorf("got %d, want 1_000_000_000", got)
	}

	// Same short when mark rises -> -1.0
	got = math.ComputeUnrealizedPnL(-1_000_000_000, 100_000_000_000, 101_000_000_000)
	if got != -1_000_000_000 {
		t.Errorf("got %d, want -1_000_000_000", got)
	}
}

func TestComputeUnrealizedPnL_Flat(t *testing.T) {
	if got := math.ComputeUnrealizedPnL(0, 100_000_000_000, 200_000_000_000); got != 0 {
		t.Errorf("flat pnl = %d, want 0", got)
	}
}

func TestComputeUnrealizedPnL_SubUnitTruncation(t *testing.T) {
	// 1 lamport of size: diff * 1 / 1e9 truncates to zero, both signs.
	if got := math.ComputeUnrealizedPnL(1, 100_000_000_000, 100_500_000_000); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
	if got := math.ComputeUnrealizedPnL(1, 100_500_000_000, 100_000_000_000); got != 0 {
		t.Errorf("got %d, want 0 (not -1)", got)
	}
}

// ============================================================================
// Test: funding
// ============================================================================

func TestComputeFundingPayment(t *testing.T) {
	// 2.0 long, index moved +0.5 -> pays 1.0
	got := math.ComputeFundingPayment(2_000_000_000, 500_000_000, 0)
	if got != 1_000_000_000 {
		t.Errorf("got %d, want 1_000_000_000", got)
	}

	// Short receives under a positive index move.
	got = math.ComputeFundingPayment(-2_000_000_000, 500_000_000, 0)
	if got != -1_000_000_000 {
		t.Errorf("got %d, want -1_000_000_000", got)
	}

	if got := math.ComputeFundingPayment(0, 500_000_000, 0); got != 0 {
		t.Errorf("flat funding = %d, want 0", got)
	}

	// Already settled to the current index.
	if got := math.ComputeFundingPayment(2_000_000_000, 12345, 12345); got != 0 {
		t.Errorf("settled funding = %d, want 0", got)
	}
}

func TestComputeFundingIncrement(t *testing.T) {
	if got := math.ComputeFundingIncrement(10_000, 250); got != 2_500_000 {
		t.Errorf("got %d, want 2_500_000", got)
	}
	if got := math.ComputeFundingIncrement(-10_000, 2); got != -20_000 {
		t.Errorf("got %d, want -20_000", got)
	}
}
