package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rangeworks/clb/internal/types"
)

func TestLoadParametersDefaults(t *testing.T) {
	params, err := LoadParameters()
	require.NoError(t, err)
	assert.Equal(t, DefaultBacktestParameters, params)
}

func TestLoadParametersOverrides(t *testing.T) {
	t.Setenv("CLB_INVESTMENT_USD", "250000")
	t.Setenv("CLB_RANGE_TYPE", "full-range")
	t.Setenv("CLB_GRANULARITY", "hourly")
	t.Setenv("CLB_APR_MODE", "compounding")
	t.Setenv("CLB_OUT_OF_RANGE_PATIENCE", "7")

	params, err := LoadParameters()
	require.NoError(t, err)

	assert.Equal(t, 250_000.0, params.InvestmentUSD)
	assert.Equal(t, types.RangeFull, params.RangeType)
	assert.Equal(t, types.GranularityHourly, params.Granularity)
	assert.Equal(t, types.APRModeCompounding, params.APRMode)
	assert.Equal(t, 7, params.OutOfRangePatience)

	// Untouched values keep their defaults.
	assert.Equal(t, DefaultBacktestParameters.RangeWidthPct, params.RangeWidthPct)
}

func TestLoadParametersRejectsMalformedValues(t *testing.T) {
	t.Setenv("CLB_INVESTMENT_USD", "lots")
	_, err := LoadParameters()
	assert.Error(t, err)
}

func TestLoadConfigRequiresSnapshotSource(t *testing.T) {
	t.Setenv("CLB_DATA_FILE", "")
	t.Setenv("CLB_DATA_URL", "")
	t.Setenv("CLB_PROTOCOL", "uniswap-v3")
	t.Setenv("CLB_TOKEN0", "WETH")
	t.Setenv("CLB_TOKEN1", "USDC")

	assert.Error(t, LoadConfig())

	t.Setenv("CLB_DATA_FILE", "snapshots.csv")
	require.NoError(t, LoadConfig())
	assert.Equal(t, "snapshots.csv", DataFile)
	assert.Equal(t, "uniswap-v3", Protocol)
	assert.Equal(t, "WETH", Token0Symbol)
	assert.Equal(t, "USDC", Token1Symbol)
}
