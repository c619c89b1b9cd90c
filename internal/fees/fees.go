/*

This file contains the fee-accrual engine: it turns the pool's cumulative
per-liquidity fee-growth accumulators into USD fee income per interval. Only
the previous snapshot's accumulators are retained, so memory is O(1) over the
series. The accumulator delta is taken in integer arithmetic; scaling to real
units happens in fixed-point decimal only after the subtraction.

*/

package fees

import (
	"math"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rangeworks/clb/internal/allocator"
	"github.com/rangeworks/clb/internal/logger"
)

// Engine accrues fee income for one position between consecutive snapshots.
// Not safe for concurrent use; each position owns its own engine.
type Engine struct {
	decimals0 int
	decimals1 int

	prev0  sdkmath.Int
	prev1  sdkmath.Int
	seeded bool

	log zerolog.Logger
}

// NewEngine creates an engine for a pair with the given decimal precisions.
func NewEngine(decimals0, decimals1 int) *Engine {
	return &Engine{
		decimals0: decimals0,
		decimals1: decimals1,
		log:       logger.GetForComponent("fee_engine"),
	}
}

// Seed records a fee-growth baseline without accruing anything, used when a
// position is opened mid-series.
func (e *Engine) Seed(growth0, growth1 sdkmath.Int) {
	e.prev0 = safeInt(growth0)
	e.prev1 = safeInt(growth1)
	e.seeded = true
}

// Accrue computes the USD fee income for the interval ending at the given
// accumulators and advances the baseline. liquidity is the position's raw
// liquidity-unit count, usdPrice0/usdPrice1 the current USD prices of the two
// legs and activeFractionPct the share of the interval the position range
// overlapped the traded band (0..100).
//
// The very first observation only seeds the baseline and yields zero. When
// skip is set (position out of range, or the interval is a rebalance
// boundary) the income is zero but the baseline is still advanced. Malformed
// growth values degrade to zero income for this interval only.
func (e *Engine) Accrue(growth0, growth1 sdkmath.Int, liquidity decimal.Decimal, usdPrice0, usdPrice1, activeFractionPct float64, skip bool) float64 {
	cur0 := safeInt(growth0)
	cur1 := safeInt(growth1)

	prev0, prev1, seeded := e.prev0, e.prev1, e.seeded
	e.prev0, e.prev1, e.seeded = cur0, cur1, true

	if !seeded || skip {
		return 0
	}
	if liquidity.IsZero() || activeFractionPct <= 0 {
		return 0
	}
	if activeFractionPct > 100 {
		activeFractionPct = 100
	}

	fee0 := e.legIncome(cur0, prev0, liquidity, e.decimals0, usdPrice0)
	fee1 := e.legIncome(cur1, prev1, liquidity, e.decimals1, usdPrice1)

	return (fee0 + fee1) * activeFractionPct / 100
}

// legIncome converts one leg's accumulator delta into USD. A negative delta
// means the pool accumulator was reset; the leg contributes nothing for this
// interval.
func (e *Engine) legIncome(cur, prev sdkmath.Int, liquidity decimal.Decimal, decimals int, usdPrice float64) float64 {
	delta := cur.Sub(prev)
	if delta.IsNegative() {
		e.log.Warn().
			Str("delta", delta.String()).
			Msg("Fee-growth accumulator decreased, treating interval income as zero")
		return 0
	}
	if delta.IsZero() || usdPrice <= 0 {
		return 0
	}

	tokens := decimal.NewFromBigInt(delta.BigInt(), 0).
		Mul(liquidity).
		Div(allocator.Q128).
		Div(decimal.New(1, int32(decimals)))

	value, _ := tokens.Mul(decimal.NewFromFloat(usdPrice)).Float64()
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}

// safeInt guards against the zero-value (nil-backed) sdkmath.Int, which
// panics on arithmetic.
func safeInt(v sdkmath.Int) sdkmath.Int {
	if v.IsNil() {
		return sdkmath.ZeroInt()
	}
	return v
}
