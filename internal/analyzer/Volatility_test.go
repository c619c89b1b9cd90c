package analyzer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rangeworks/clb/internal/types"
)

func priceSeries(prices ...float64) []types.PoolSnapshot {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	snaps := make([]types.PoolSnapshot, len(prices))
	for i, price := range prices {
		snaps[i] = types.PoolSnapshot{
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour),
			Price0:    price,
		}
	}
	return snaps
}

func TestCalculateVolatilityConstantPrices(t *testing.T) {
	vol, err := CalculateVolatility(priceSeries(100, 100, 100, 100), 365)
	require.NoError(t, err)
	assert.Zero(t, vol)
}

func TestCalculateVolatilityInsufficientData(t *testing.T) {
	_, err := CalculateVolatility(priceSeries(100), 365)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = CalculateVolatility(nil, 365)
	assert.ErrorIs(t, err, ErrInsufficientData)

	// Only non-positive prices leave no usable returns.
	_, err = CalculateVolatility(priceSeries(0, -5, 0), 365)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCalculateVolatilityKnownValue(t *testing.T) {
	// Alternating +/-10% moves: log returns are +/-ln(1.1), mean ~0 is not
	// exactly zero, so compute the expectation directly.
	vol, err := CalculateVolatility(priceSeries(100, 110, 99, 108.9), 365)
	require.NoError(t, err)

	r1 := math.Log(110.0 / 100)
	r2 := math.Log(99.0 / 110)
	r3 := math.Log(108.9 / 99)
	mean := (r1 + r2 + r3) / 3
	variance := ((r1-mean)*(r1-mean) + (r2-mean)*(r2-mean) + (r3-mean)*(r3-mean)) / 3
	expected := math.Sqrt(variance) * math.Sqrt(365)

	assert.InDelta(t, expected, vol, 1e-12)
}

func TestCalculateVolatilitySortsInput(t *testing.T) {
	ordered := priceSeries(100, 120, 90, 130)
	shuffled := []types.PoolSnapshot{ordered[2], ordered[0], ordered[3], ordered[1]}

	want, err := CalculateVolatility(ordered, 365)
	require.NoError(t, err)
	got, err := CalculateVolatility(shuffled, 365)
	require.NoError(t, err)

	assert.Equal(t, want, got)

	// The caller's slice is left untouched.
	assert.Equal(t, ordered[2].Timestamp, shuffled[0].Timestamp)
}

func TestCalculateVolatilityAnnualization(t *testing.T) {
	snaps := priceSeries(100, 105, 98, 104)

	daily, err := CalculateVolatility(snaps, 365)
	require.NoError(t, err)
	hourly, err := CalculateVolatility(snaps, 8760)
	require.NoError(t, err)

	assert.InDelta(t, math.Sqrt(8760.0/365), hourly/daily, 1e-9)
}
