package fees

import (
	"math/big"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// growthX128 builds an accumulator value of n whole tokens per liquidity unit.
func growthX128(n int64) sdkmath.Int {
	x128 := new(big.Int).Lsh(big.NewInt(1), 128)
	return sdkmath.NewIntFromBigInt(new(big.Int).Mul(big.NewInt(n), x128))
}

func TestEngineFirstObservationSeedsOnly(t *testing.T) {
	e := NewEngine(0, 0)

	fee := e.Accrue(growthX128(5), growthX128(5), decimal.NewFromInt(1), 1, 1, 100, false)
	assert.Zero(t, fee)

	// Second interval accrues against the seeded baseline.
	fee = e.Accrue(growthX128(6), growthX128(5), decimal.NewFromInt(1), 2, 1, 100, false)
	assert.InDelta(t, 2, fee, 1e-9)
}

func TestEngineSeed(t *testing.T) {
	e := NewEngine(0, 0)
	e.Seed(growthX128(10), growthX128(10))

	fee := e.Accrue(growthX128(11), growthX128(12), decimal.NewFromInt(1), 1, 3, 100, false)
	// One token of leg0 at $1 plus two tokens of leg1 at $3.
	assert.InDelta(t, 7, fee, 1e-9)
}

func TestEngineIdenticalAccumulators(t *testing.T) {
	e := NewEngine(0, 0)
	e.Seed(growthX128(10), growthX128(10))

	fee := e.Accrue(growthX128(10), growthX128(10), decimal.NewFromInt(1), 1, 1, 100, false)
	assert.Zero(t, fee)
}

func TestEngineSkipStillAdvancesBaseline(t *testing.T) {
	e := NewEngine(0, 0)
	e.Seed(growthX128(0), growthX128(0))

	// Skipped interval earns nothing.
	fee := e.Accrue(growthX128(4), growthX128(0), decimal.NewFromInt(1), 1, 1, 100, true)
	assert.Zero(t, fee)

	// The skipped interval's growth must not leak into the next one.
	fee = e.Accrue(growthX128(4), growthX128(0), decimal.NewFromInt(1), 1, 1, 100, false)
	assert.Zero(t, fee)
}

func TestEngineNegativeDeltaIgnored(t *testing.T) {
	e := NewEngine(0, 0)
	e.Seed(growthX128(10), growthX128(10))

	fee := e.Accrue(growthX128(3), growthX128(11), decimal.NewFromInt(1), 1, 1, 100, false)
	// Leg0 reset contributes nothing; leg1 still pays its one token.
	assert.InDelta(t, 1, fee, 1e-9)
}

func TestEngineActiveFractionScaling(t *testing.T) {
	e := NewEngine(0, 0)
	e.Seed(growthX128(0), growthX128(0))

	fee := e.Accrue(growthX128(10), growthX128(0), decimal.NewFromInt(1), 1, 1, 50, false)
	assert.InDelta(t, 5, fee, 1e-9)

	// Fractions above 100 are clamped, not amplified.
	e2 := NewEngine(0, 0)
	e2.Seed(growthX128(0), growthX128(0))
	fee = e2.Accrue(growthX128(10), growthX128(0), decimal.NewFromInt(1), 1, 1, 250, false)
	assert.InDelta(t, 10, fee, 1e-9)
}

func TestEngineZeroLiquidityAndFraction(t *testing.T) {
	e := NewEngine(0, 0)
	e.Seed(growthX128(0), growthX128(0))

	assert.Zero(t, e.Accrue(growthX128(10), growthX128(10), decimal.Zero, 1, 1, 100, false))
	assert.Zero(t, e.Accrue(growthX128(20), growthX128(20), decimal.NewFromInt(1), 1, 1, 0, false))
}

func TestEngineDecimalScaling(t *testing.T) {
	e := NewEngine(6, 0)
	e.Seed(growthX128(0), growthX128(0))

	// One raw unit of a 6-decimal token is 1e-6 whole tokens.
	fee := e.Accrue(growthX128(1), growthX128(0), decimal.NewFromInt(1), 1, 1, 100, false)
	require.InDelta(t, 1e-6, fee, 1e-12)
}

func TestEngineNilIntGuard(t *testing.T) {
	e := NewEngine(0, 0)

	var nilInt sdkmath.Int
	assert.NotPanics(t, func() {
		e.Accrue(nilInt, nilInt, decimal.NewFromInt(1), 1, 1, 100, false)
		e.Accrue(growthX128(1), growthX128(1), decimal.NewFromInt(1), 1, 1, 100, false)
	})
}
