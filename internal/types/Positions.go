/*

This file contains the types describing a simulated concentrated-liquidity
position: its range kind, the immutable sub-position history records, and the
per-step status view exposed to the driver and the reporting layer.

*/

package types

import "time"

// RangeType selects how the position's price band is constructed.
type RangeType string

const (
	RangeFull       RangeType = "full-range"
	RangePercentage RangeType = "percentage"
)

// APRMode selects how the headline APR figure is reported.
type APRMode string

const (
	APRModeRunning     APRMode = "running"     // net fees over initial capital, annualized
	APRModeCompounding APRMode = "compounding" // duration-weighted average of sub-position returns
)

// SubPosition is one completed interval between two rebalances (or run
// start/end). Appended on each rebalance and immutable afterwards; used only
// for weighted-APR aggregation.
type SubPosition struct {
	DataPoints      int     `json:"data_points"`
	FeesUSD         float64 `json:"fees_usd"`
	GasUSD          float64 `json:"gas_usd"`
	StartCapitalUSD float64 `json:"start_capital_usd"`
}

// PositionStatus is the external per-step view of a position. Note is a
// free-text annotation: "Start", "Rebalanced", "End" or empty.
type PositionStatus struct {
	Timestamp          time.Time `json:"timestamp"`
	Token0             string    `json:"token0"`
	Token1             string    `json:"token1"`
	Amount0            float64   `json:"amount0"`
	Amount1            float64   `json:"amount1"`
	Price              float64   `json:"price"`
	PriceLower         float64   `json:"price_lower"`
	PriceUpper         float64   `json:"price_upper"`
	TotalValueUSD      float64   `json:"total_value_usd"`
	ReturnUSD          float64   `json:"return_usd"`
	ReturnPct          float64   `json:"return_pct"`
	APRPct             float64   `json:"apr_pct"`
	NetGainVsHoldUSD   float64   `json:"net_gain_vs_hold_usd"`
	CapitalDeployedUSD float64   `json:"capital_deployed_usd"`
	FeesUSD            float64   `json:"fees_usd"`
	NetFeesUSD         float64   `json:"net_fees_usd"`
	GasUSD             float64   `json:"gas_usd"`
	MaxDrawdownPct     float64   `json:"max_drawdown_pct"`
	MaxGainPct         float64   `json:"max_gain_pct"`
	ImpermanentLossPct float64   `json:"impermanent_loss_pct"`
	TimeInRangePct     float64   `json:"time_in_range_pct"`
	OutOfRange         bool      `json:"out_of_range"`
	Rebalances         int       `json:"rebalances"`
	Note               string    `json:"note,omitempty"`
}
