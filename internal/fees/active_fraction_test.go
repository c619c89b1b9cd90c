package fees

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rangeworks/clb/internal/ticks"
)

func TestActiveLiquidityFractionFullRange(t *testing.T) {
	assert.Equal(t, 100.0, ActiveLiquidityFraction(0, 0, 0, 0, 18, 6, true))
	assert.Equal(t, 100.0, ActiveLiquidityFraction(2400, 2600, -100, 100, 18, 6, true))
}

func TestActiveLiquidityFractionDegenerate(t *testing.T) {
	assert.Zero(t, ActiveLiquidityFraction(0, 2600, -100, 100, 18, 6, false))
	assert.Zero(t, ActiveLiquidityFraction(2400, math.NaN(), -100, 100, 18, 6, false))
	assert.Zero(t, ActiveLiquidityFraction(-1, -1, -100, 100, 18, 6, false))
}

func TestActiveLiquidityFractionFlatInterval(t *testing.T) {
	// The whole period traded at one price.
	assert.Equal(t, 100.0, ActiveLiquidityFraction(1, 1, -100, 100, 6, 6, false))
	assert.Zero(t, ActiveLiquidityFraction(1, 1, 500, 900, 6, 6, false))
}

func TestActiveLiquidityFractionContainment(t *testing.T) {
	// Band fully inside a wide range earns the full interval.
	frac := ActiveLiquidityFraction(0.99, 1.01, -5000, 5000, 6, 6, false)
	assert.Equal(t, 100.0, frac)

	// Band fully outside the range earns nothing.
	frac = ActiveLiquidityFraction(0.99, 1.01, 5000, 9000, 6, 6, false)
	assert.Zero(t, frac)
}

func TestActiveLiquidityFractionPartialOverlap(t *testing.T) {
	priceLow, priceHigh := 0.99, 1.01
	tickLower, tickUpper := 0, 5000

	// The band half above the range's price ceiling (tick floor) is excluded.
	bandLow, err := ticks.PriceToTick(priceHigh, 6, 6)
	require.NoError(t, err)
	bandHigh, err := ticks.PriceToTick(priceLow, 6, 6)
	require.NoError(t, err)
	expected := float64(bandHigh-tickLower) / float64(bandHigh-bandLow) * 100

	frac := ActiveLiquidityFraction(priceLow, priceHigh, tickLower, tickUpper, 6, 6, false)
	assert.InDelta(t, expected, frac, 1e-9)
	assert.Greater(t, frac, 0.0)
	assert.Less(t, frac, 100.0)
}

func TestActiveLiquidityFractionSwappedBounds(t *testing.T) {
	// Callers may hand the band in either order.
	a := ActiveLiquidityFraction(0.99, 1.01, 0, 5000, 6, 6, false)
	b := ActiveLiquidityFraction(1.01, 0.99, 0, 5000, 6, 6, false)
	assert.Equal(t, a, b)
}
