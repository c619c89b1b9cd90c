package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rangeworks/clb/internal/backtest"
	"github.com/rangeworks/clb/internal/types"
)

// RenderMarkdown writes a human-readable run summary to w.
func RenderMarkdown(w io.Writer, pair, protocol string, params types.BacktestParameters, result *backtest.Result) error {
	final := result.Final
	start := result.Statuses[0]

	var b strings.Builder

	fmt.Fprintf(&b, "# Backtest Report: %s on %s\n\n", pair, protocol)
	fmt.Fprintf(&b, "Period: %s to %s (%d %s data points)\n\n",
		start.Timestamp.Format(time.DateOnly),
		final.Timestamp.Format(time.DateOnly),
		result.DataPoints,
		params.Granularity)

	fmt.Fprintf(&b, "## Configuration\n\n")
	fmt.Fprintf(&b, "| Parameter | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Investment | $%.2f |\n", params.InvestmentUSD)
	fmt.Fprintf(&b, "| Range | %s", params.RangeType)
	if params.RangeType == types.RangePercentage {
		fmt.Fprintf(&b, " (%.1f%% total width)", params.RangeWidthPct)
	}
	fmt.Fprintf(&b, " |\n")
	fmt.Fprintf(&b, "| APR mode | %s |\n", params.APRMode)
	fmt.Fprintf(&b, "| Gas per rebalance | $%.2f |\n\n", params.GasPerRebalanceUSD)

	fmt.Fprintf(&b, "## Results\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Final value | $%.2f |\n", final.TotalValueUSD)
	fmt.Fprintf(&b, "| Return | $%.2f (%.2f%%) |\n", final.ReturnUSD, final.ReturnPct)
	fmt.Fprintf(&b, "| APR | %.2f%% |\n", final.APRPct)
	fmt.Fprintf(&b, "| Fees earned | $%.2f (net $%.2f) |\n", final.FeesUSD, final.NetFeesUSD)
	fmt.Fprintf(&b, "| Gas spent | $%.2f |\n", final.GasUSD)
	fmt.Fprintf(&b, "| Vs. holding | $%.2f |\n", final.NetGainVsHoldUSD)
	fmt.Fprintf(&b, "| Impermanent loss | %.2f%% |\n", final.ImpermanentLossPct)
	fmt.Fprintf(&b, "| Max drawdown | %.2f%% |\n", final.MaxDrawdownPct)
	fmt.Fprintf(&b, "| Max gain | %.2f%% |\n", final.MaxGainPct)
	fmt.Fprintf(&b, "| Time in range | %.1f%% |\n", final.TimeInRangePct)
	fmt.Fprintf(&b, "| Rebalances | %d |\n", final.Rebalances)
	fmt.Fprintf(&b, "| Annualized volatility | %.1f%% |\n\n", result.Volatility*100)

	if len(result.SubPositions) > 0 {
		fmt.Fprintf(&b, "## Sub-Positions\n\n")
		fmt.Fprintf(&b, "| # | Data Points | Fees USD | Gas USD | Start Capital USD |\n|---|---|---|---|---|\n")
		for i, sub := range result.SubPositions {
			fmt.Fprintf(&b, "| %d | %d | %.2f | %.2f | %.2f |\n",
				i+1, sub.DataPoints, sub.FeesUSD, sub.GasUSD, sub.StartCapitalUSD)
		}
		fmt.Fprintf(&b, "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
