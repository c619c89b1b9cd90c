/*

This file contains the snapshot type consumed by the backtest core: one pool
observation per period, with the cumulative fee-growth accumulators kept as
arbitrary-precision integers so deltas are taken before any float conversion.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

// Granularity is the spacing of the historical series.
type Granularity string

const (
	GranularityDaily  Granularity = "daily"
	GranularityHourly Granularity = "hourly"
)

// PeriodsPerYear returns the annualization factor for the granularity
// (365 for daily data, 8760 for hourly).
func (g Granularity) PeriodsPerYear() float64 {
	if g == GranularityHourly {
		return 8760
	}
	return 365
}

// PoolSnapshot is a single observation of the pool. Price0 is the quote-leg
// price of the base asset (asset1 per unit asset0); Price1 is the USD price
// of the quote leg itself. FeeGrowth0/FeeGrowth1 are the pool's cumulative
// per-liquidity fee accumulators in X128 fixed point, monotonically
// non-decreasing absent pool resets.
type PoolSnapshot struct {
	Timestamp     time.Time       `json:"timestamp"`
	Tick          int             `json:"tick,omitempty"`
	Price0        float64         `json:"price0"`
	Price1        float64         `json:"price1"`
	PriceHigh     float64         `json:"price_high"`
	PriceLow      float64         `json:"price_low"`
	FeeGrowth0    sdkmath.Int     `json:"fee_growth0"`
	FeeGrowth1    sdkmath.Int     `json:"fee_growth1"`
	PoolLiquidity decimal.Decimal `json:"pool_liquidity"`
	TVLUSD        float64         `json:"tvl_usd"`
}
