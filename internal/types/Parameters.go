/*

This file contains the tunable parameters for a backtest run. Different sets
of these parameters can be compared against the same snapshot series.

*/

package types

// BacktestParameters holds all tunable knobs for a single backtest run.
type BacktestParameters struct {
	// --- Position Construction ---
	InvestmentUSD float64     `json:"investment_usd"`  // Initial capital deployed into the position.
	RangeType     RangeType   `json:"range_type"`      // full-range or percentage.
	RangeWidthPct float64     `json:"range_width_pct"` // Total band width around the entry price (e.g. 50.0 for +/-25%). Ignored for full-range.
	Granularity   Granularity `json:"granularity"`     // daily or hourly series.
	APRMode       APRMode     `json:"apr_mode"`        // running or compounding APR reporting.

	// --- Rebalance Execution ---
	GasPerRebalanceUSD float64 `json:"gas_per_rebalance_usd"` // Flat gas cost attributed to each rebalance (and the final close).

	// --- Rebalance Policies (driver-side; the core never decides) ---
	RebalanceEveryN    int     `json:"rebalance_every_n"`     // Fixed-interval policy: rebalance every N data points (0 disables).
	OutOfRangePatience int     `json:"out_of_range_patience"` // Out-of-range policy: rebalance after N consecutive inactive points (0 disables).
	VolatilityLookback int     `json:"volatility_lookback"`   // Volatility policy: window of data points for the volatility estimate (0 disables).
	VolatilityTrigger  float64 `json:"volatility_trigger"`    // Volatility policy: annualized volatility above which a rebalance fires.
}
