package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rangeworks/clb/internal/types"
)

func sampleStatuses() []types.PositionStatus {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []types.PositionStatus{
		{
			Timestamp: start, Token0: "WETH", Token1: "USDC",
			Price: 2500, PriceLower: 2000, PriceUpper: 3000,
			TotalValueUSD: 100_000, Note: "Start",
		},
		{
			Timestamp: start.Add(24 * time.Hour), Token0: "WETH", Token1: "USDC",
			Price: 2600, PriceLower: 2000, PriceUpper: 3000,
			TotalValueUSD: 101_250.5, ReturnUSD: 1_250.5, ReturnPct: 1.2505,
			FeesUSD: 300, NetFeesUSD: 250, GasUSD: 50,
			Rebalances: 1, Note: "End",
		},
	}
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCSV(&buf, sampleStatuses()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header plus two rows

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "2025-01-01T00:00:00Z", records[1][0])
	assert.Equal(t, "Start", records[1][len(csvHeader)-1])
	assert.Equal(t, "2600", records[2][1])
	assert.Equal(t, "1", records[2][len(csvHeader)-2])
}

func TestRenderCSVEmptySeries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	require.NoError(t, WriteCSVFile(path, sampleStatuses()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "total_value_usd")
	assert.Contains(t, string(data), "2025-01-01T00:00:00Z")
}
