package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rangeworks/clb/internal/backtest"
	"github.com/rangeworks/clb/internal/types"
)

func TestRenderMarkdown(t *testing.T) {
	statuses := sampleStatuses()
	result := &backtest.Result{
		Statuses:   statuses,
		Final:      statuses[len(statuses)-1],
		DataPoints: len(statuses),
		Volatility: 0.55,
		SubPositions: []types.SubPosition{
			{DataPoints: 2, FeesUSD: 300, GasUSD: 50, StartCapitalUSD: 100_000},
		},
	}
	params := types.BacktestParameters{
		InvestmentUSD:      100_000,
		RangeType:          types.RangePercentage,
		RangeWidthPct:      40,
		Granularity:        types.GranularityDaily,
		APRMode:            types.APRModeRunning,
		GasPerRebalanceUSD: 50,
	}

	var buf bytes.Buffer
	require.NoError(t, RenderMarkdown(&buf, "WETH-USDC", "uniswap-v3", params, result))
	out := buf.String()

	assert.Contains(t, out, "# Backtest Report: WETH-USDC on uniswap-v3")
	assert.Contains(t, out, "$100000.00")
	assert.Contains(t, out, "40.0% total width")
	assert.Contains(t, out, "## Sub-Positions")
	assert.Contains(t, out, "2025-01-01 to 2025-01-02")
}
