/*

This file contains the default backtest parameters. The defaults model a
moderately concentrated daily-data position with a realistic mainnet gas
figure per rebalance; every value can be overridden from the environment.

*/

package config

import (
	"os"

	"github.com/rangeworks/clb/internal/types"
)

// DefaultBacktestParameters is the baseline parameter set used when no
// environment overrides are present.
var DefaultBacktestParameters = types.BacktestParameters{
	InvestmentUSD: 100_000,

	RangeType: types.RangePercentage,
	// A 50% total band (+/-25% around entry) is wide enough to survive normal
	// daily moves while still concentrating meaningfully versus full range.
	RangeWidthPct: 50,

	Granularity: types.GranularityDaily,
	APRMode:     types.APRModeRunning,

	// Mint + burn + swaps on mainnet; a flat figure, not an estimate.
	GasPerRebalanceUSD: 50,

	// Rebalance only when the position has drifted out of range for a few
	// consecutive periods. The fixed-interval and volatility policies are off
	// by default.
	RebalanceEveryN:    0,
	OutOfRangePatience: 3,
	VolatilityLookback: 0,
	VolatilityTrigger:  0,
}

// LoadParameters returns the default parameters with any environment
// overrides applied.
func LoadParameters() (types.BacktestParameters, error) {
	params := DefaultBacktestParameters
	var err error

	params.InvestmentUSD, err = getEnvAsFloat64("CLB_INVESTMENT_USD", params.InvestmentUSD)
	if err != nil {
		return params, err
	}
	params.RangeWidthPct, err = getEnvAsFloat64("CLB_RANGE_WIDTH_PCT", params.RangeWidthPct)
	if err != nil {
		return params, err
	}
	params.GasPerRebalanceUSD, err = getEnvAsFloat64("CLB_GAS_PER_REBALANCE_USD", params.GasPerRebalanceUSD)
	if err != nil {
		return params, err
	}
	params.RebalanceEveryN, err = getEnvAsInt("CLB_REBALANCE_EVERY_N", params.RebalanceEveryN)
	if err != nil {
		return params, err
	}
	params.OutOfRangePatience, err = getEnvAsInt("CLB_OUT_OF_RANGE_PATIENCE", params.OutOfRangePatience)
	if err != nil {
		return params, err
	}
	params.VolatilityLookback, err = getEnvAsInt("CLB_VOL_LOOKBACK", params.VolatilityLookback)
	if err != nil {
		return params, err
	}
	params.VolatilityTrigger, err = getEnvAsFloat64("CLB_VOL_TRIGGER", params.VolatilityTrigger)
	if err != nil {
		return params, err
	}

	if v := os.Getenv("CLB_RANGE_TYPE"); v != "" {
		params.RangeType = types.RangeType(v)
	}
	if v := os.Getenv("CLB_GRANULARITY"); v != "" {
		params.Granularity = types.Granularity(v)
	}
	if v := os.Getenv("CLB_APR_MODE"); v != "" {
		params.APRMode = types.APRMode(v)
	}

	return params, nil
}
