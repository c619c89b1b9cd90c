package ticks

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceToTick(t *testing.T) {
	t.Run("unit price with equal decimals maps to tick zero", func(t *testing.T) {
		tick, err := PriceToTick(1, 6, 6)
		require.NoError(t, err)
		assert.Equal(t, 0, tick)
	})

	t.Run("tick decreases as price rises", func(t *testing.T) {
		low, err := PriceToTick(2400, 18, 6)
		require.NoError(t, err)
		high, err := PriceToTick(2600, 18, 6)
		require.NoError(t, err)
		assert.Greater(t, low, high)
	})

	t.Run("rejects non-positive and non-finite prices", func(t *testing.T) {
		for _, price := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			_, err := PriceToTick(price, 18, 6)
			assert.ErrorIs(t, err, ErrInvalidPrice)
		}
	})

	t.Run("rejects prices beyond protocol bounds", func(t *testing.T) {
		_, err := PriceToTick(1e-300, 6, 6)
		assert.ErrorIs(t, err, ErrTickOutOfBounds)
	})
}

func TestTickToPriceRoundtrip(t *testing.T) {
	for _, tick := range []int{-354580, -2000, -1, 0, 1, 2000, 100000} {
		price := TickToPrice(tick, 18, 6)
		back, err := PriceToTick(price, 18, 6)
		require.NoError(t, err)
		assert.Equal(t, tick, back, "tick %d did not roundtrip", tick)
	}
}

func TestTickToPriceMonotonic(t *testing.T) {
	prev := TickToPrice(-1000, 18, 6)
	for tick := -999; tick <= 1000; tick += 100 {
		cur := TickToPrice(tick, 18, 6)
		assert.Less(t, cur, prev)
		prev = cur
	}
}

func TestAlign(t *testing.T) {
	assert.Equal(t, 120, Align(123, 60))
	assert.Equal(t, 180, Align(155, 60))
	assert.Equal(t, -120, Align(-123, 60))
	assert.Equal(t, 0, Align(25, 60))

	// Spacing of one (or less) leaves the tick untouched.
	assert.Equal(t, 123, Align(123, 1))
	assert.Equal(t, 123, Align(123, 0))
}
