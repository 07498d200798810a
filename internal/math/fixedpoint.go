package math

import (
	"math/big"
	"sync"
)

// Precision is the fixed-point scale used by the on-chain program.
// All prices, sizes and collateral amounts on the wire are int64/uint64
// values scaled by 1e9.
const Precision int64 = 1_000_000_000

// ToFixedPoint converts a human-readable decimal to the program's
// fixed-point representation, truncating toward zero. Overflow beyond
// the int64 range is the caller's responsibility: every value that
// reaches the codec is already bounded by its 64-bit wire encoding.
func ToFixedPoint(v float64) int64 {
	return int64(v * float64(Precision))
}

// FromFixedPoint converts a fixed-point value back to a float. Exact
// round-trips hold for values with at most 9 fractional digits within
// the float64 safe-integer range; beyond that, 1e-9 absolute tolerance.
func FromFixedPoint(v int64) float64 {
	return float64(v) / float64(Precision)
}

// Int128 is a pooled big.Int for intermediate calculations
var int128Pool = &sync.Pool{
	New: func() interface{} {
		return new(big.Int)
	},
}

func getInt128() *big.Int {
	return int128Pool.Get().(*big.Int)
}

func putInt128(v *big.Int) {
	v.SetInt64(0) // Clear before returning to pool
	int128Pool.Put(v)
}

// MulDiv computes a * b / denom using an int128 intermediate so the
// product cannot overflow. Division truncates toward zero, matching the
// integer division the on-chain program performs.
func MulDiv(a, b, denom int64) int64 {
	product := getInt128()
	product.Mul(big.NewInt(a), big.NewInt(b))

	quotient := getInt128()
	quotient.Quo(product, big.NewInt(denom))

	result := quotient.Int64()

	putInt128(product)
	putInt128(quotient)

	return result
}

// ComputeNotional calculates the position's absolute notional value:
// |baseAmount| * markPrice / Precision, truncated.
func ComputeNotional(baseAmount int64, markPrice uint64) uint64 {
	size := getInt128()
	size.SetInt64(baseAmount)
	size.Abs(size)

	price := getInt128()
	price.SetUint64(markPrice)

	size.Mul(size, price)
	size.Quo(size, big.NewInt(Precision))

	result := size.Uint64()

	putInt128(size)
	putInt128(price)

	return result
}

// ComputeUnrealizedPnL calculates unrealized PnL against the mark price.
// Long positions gain when mark > entry, shorts when entry > mark. The
// final division truncates toward zero; sub-unit precision is lost by
// the same convention the program uses.
func ComputeUnrealizedPnL(baseAmount int64, entryPrice, markPrice uint64) int64 {
	if baseAmount == 0 {
		return 0
	}

	size := baseAmount
	if size < 0 {
		size = -size
	}

	priceDiff := int64(markPrice) - int64(entryPrice)
	if baseAmount < 0 {
		priceDiff = -priceDiff
	}

	return MulDiv(priceDiff, size, Precision)
}
