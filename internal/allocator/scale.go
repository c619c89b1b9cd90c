package allocator

import (
	"math"

	"github.com/shopspring/decimal"
)

// Fixed-point scales used by the liquidity-unit math.
var (
	Q96  = decimal.NewFromInt(2).Pow(decimal.NewFromInt(96))
	Q128 = decimal.NewFromInt(2).Pow(decimal.NewFromInt(128))
)

// DecimalAdjustment returns 10^(decimals1-decimals0), the factor between the
// quoted price and the pool's raw-unit price.
func DecimalAdjustment(decimals0, decimals1 int) float64 {
	return math.Pow(10, float64(decimals1-decimals0))
}

// SqrtPriceX96 converts a quoted price into the Q96 square root of its
// raw-unit representation. The token allocation and the liquidity-unit
// derivation both go through this single helper so the decimal-adjustment
// convention cannot drift between them; a mismatch there silently corrupts
// the fee-share accounting downstream.
func SqrtPriceX96(price float64, decimals0, decimals1 int) decimal.Decimal {
	raw := price * DecimalAdjustment(decimals0, decimals1)
	return decimal.NewFromFloat(math.Sqrt(raw)).Mul(Q96)
}
