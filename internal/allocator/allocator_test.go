package allocator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	d0 = 18
	d1 = 6
)

func TestAllocateRegions(t *testing.T) {
	t.Run("price at or below lower bound holds only the base leg", func(t *testing.T) {
		alloc, err := Allocate(10_000, 100, 120, 150, 1, d0, d1, decimal.Zero)
		require.NoError(t, err)

		assert.InDelta(t, 100, alloc.Amount0, 1e-9)
		assert.Zero(t, alloc.Amount1)
	})

	t.Run("price at or above upper bound holds only the quote leg", func(t *testing.T) {
		alloc, err := Allocate(10_000, 200, 120, 150, 1, d0, d1, decimal.Zero)
		require.NoError(t, err)

		assert.Zero(t, alloc.Amount0)
		assert.InDelta(t, 10_000, alloc.Amount1, 1e-9)
	})

	t.Run("price inside the band holds both legs and conserves value", func(t *testing.T) {
		alloc, err := Allocate(10_000, 2500, 2000, 3000, 1, d0, d1, decimal.Zero)
		require.NoError(t, err)

		assert.Greater(t, alloc.Amount0, 0.0)
		assert.Greater(t, alloc.Amount1, 0.0)

		value := alloc.Amount0*2500 + alloc.Amount1
		assert.InDelta(t, 10_000, value, 1e-6)
	})
}

func TestAllocateLiquidity(t *testing.T) {
	t.Run("liquidity scales linearly with investment", func(t *testing.T) {
		small, err := Allocate(10_000, 2500, 2000, 3000, 1, d0, d1, decimal.Zero)
		require.NoError(t, err)
		large, err := Allocate(20_000, 2500, 2000, 3000, 1, d0, d1, decimal.Zero)
		require.NoError(t, err)

		require.True(t, small.Liquidity.IsPositive())
		ratio, _ := large.Liquidity.Div(small.Liquidity).Float64()
		assert.InDelta(t, 2, ratio, 1e-6)
	})

	t.Run("narrower band concentrates more liquidity per dollar", func(t *testing.T) {
		wide, err := Allocate(10_000, 2500, 2000, 3000, 1, d0, d1, decimal.Zero)
		require.NoError(t, err)
		narrow, err := Allocate(10_000, 2500, 2400, 2600, 1, d0, d1, decimal.Zero)
		require.NoError(t, err)

		assert.True(t, narrow.Liquidity.GreaterThan(wide.Liquidity))
	})

	t.Run("pool share reported against pool-wide liquidity", func(t *testing.T) {
		base, err := Allocate(10_000, 2500, 2000, 3000, 1, d0, d1, decimal.Zero)
		require.NoError(t, err)

		// A pool holding exactly our liquidity means a 100% share.
		alloc, err := Allocate(10_000, 2500, 2000, 3000, 1, d0, d1, base.Liquidity)
		require.NoError(t, err)
		assert.InDelta(t, 100, alloc.LPSharePct, 1e-6)
	})
}

func TestAllocateFullRange(t *testing.T) {
	alloc, err := AllocateFullRange(10_000, 2500, 1, d0, d1, decimal.Zero)
	require.NoError(t, err)

	// Full range is an even split regardless of the band approximation.
	assert.InDelta(t, 5_000, alloc.Amount0*2500, 1e-6)
	assert.InDelta(t, 5_000, alloc.Amount1, 1e-6)

	lower, upper := FullRangeBounds(2500)
	assert.Equal(t, lower, alloc.PriceLower)
	assert.Equal(t, upper, alloc.PriceUpper)
	assert.True(t, alloc.Liquidity.IsPositive())
}

func TestAllocateErrors(t *testing.T) {
	_, err := Allocate(0, 2500, 2000, 3000, 1, d0, d1, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidInvestment)

	_, err = Allocate(10_000, -1, 2000, 3000, 1, d0, d1, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = Allocate(10_000, 2500, 3000, 2000, 1, d0, d1, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidBounds)

	_, err = AllocateFullRange(-5, 2500, 1, d0, d1, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidInvestment)
}
