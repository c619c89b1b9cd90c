/*

CSV rendering of a backtest status series, one row per data point. The column
set mirrors the status struct so a run can be inspected in a spreadsheet
without any post-processing.

*/

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rangeworks/clb/internal/types"
)

var csvHeader = []string{
	"timestamp", "price", "price_lower", "price_upper", "out_of_range",
	"amount0", "amount1", "total_value_usd", "capital_deployed_usd",
	"return_usd", "return_pct", "apr_pct",
	"fees_usd", "net_fees_usd", "gas_usd",
	"net_gain_vs_hold_usd", "impermanent_loss_pct",
	"max_drawdown_pct", "max_gain_pct", "time_in_range_pct",
	"rebalances", "note",
}

// RenderCSV writes the status series as CSV to w, header first.
func RenderCSV(w io.Writer, statuses []types.PositionStatus) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range statuses {
		row := []string{
			s.Timestamp.Format(time.RFC3339),
			formatFloat(s.Price),
			formatFloat(s.PriceLower),
			formatFloat(s.PriceUpper),
			strconv.FormatBool(s.OutOfRange),
			formatFloat(s.Amount0),
			formatFloat(s.Amount1),
			formatFloat(s.TotalValueUSD),
			formatFloat(s.CapitalDeployedUSD),
			formatFloat(s.ReturnUSD),
			formatFloat(s.ReturnPct),
			formatFloat(s.APRPct),
			formatFloat(s.FeesUSD),
			formatFloat(s.NetFeesUSD),
			formatFloat(s.GasUSD),
			formatFloat(s.NetGainVsHoldUSD),
			formatFloat(s.ImpermanentLossPct),
			formatFloat(s.MaxDrawdownPct),
			formatFloat(s.MaxGainPct),
			formatFloat(s.TimeInRangePct),
			strconv.Itoa(s.Rebalances),
			s.Note,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile renders the status series to a file at path.
func WriteCSVFile(path string, statuses []types.PositionStatus) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	return RenderCSV(file, statuses)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
