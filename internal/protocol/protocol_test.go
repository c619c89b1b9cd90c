package protocol

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rangeworks/clb/internal/position"
	"github.com/rangeworks/clb/internal/types"
)

func TestByName(t *testing.T) {
	preset, err := ByName("uniswap-v3")
	require.NoError(t, err)
	assert.Equal(t, 60, preset.TickSpacing)
	assert.Equal(t, 18, preset.Decimals0)
	assert.Equal(t, 6, preset.Decimals1)

	// Lookup is case-insensitive and trims whitespace.
	upper, err := ByName("  Uniswap-V3 ")
	require.NoError(t, err)
	assert.Equal(t, preset, upper)

	_, err = ByName("sushiswap")
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "uniswap-v3")
	assert.Contains(t, names, "pancake-v3")
	assert.IsNonDecreasing(t, names)
}

func TestPresetNewPosition(t *testing.T) {
	preset, err := ByName("uniswap-v3")
	require.NoError(t, err)

	pos, err := preset.NewPosition(position.Config{
		Token0:        types.Token{Symbol: "WETH"},
		Token1:        types.Token{Symbol: "USDC"},
		InvestmentUSD: 50_000,
		RangeType:     types.RangePercentage,
		RangeWidthPct: 40,
		Granularity:   types.GranularityDaily,
		Initial: types.PoolSnapshot{
			Timestamp:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Price0:        2500,
			Price1:        1,
			FeeGrowth0:    sdkmath.ZeroInt(),
			FeeGrowth1:    sdkmath.ZeroInt(),
			PoolLiquidity: decimal.Zero,
		},
	})
	require.NoError(t, err)

	// The preset's tick spacing snaps the range onto the protocol grid.
	tickLower, tickUpper, _, _ := pos.Range()
	assert.Zero(t, tickLower%60)
	assert.Zero(t, tickUpper%60)
	assert.InDelta(t, 50_000, pos.TotalValueUSD(), 1e-6)
}
