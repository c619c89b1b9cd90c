/*

Persistence for completed backtest runs. A run is stored as one summary row
plus its per-step status series and realized sub-position ledger, all inside
a single transaction so a half-written run never becomes visible.

*/

package state

import (
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/rangeworks/clb/internal/backtest"
	"github.com/rangeworks/clb/internal/types"
)

// SaveRun persists one completed backtest run and returns its run_id.
func SaveRun(pair, protocol string, params types.BacktestParameters, result *backtest.Result) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	final := result.Final

	steps := make([]int64, len(result.RebalanceSteps))
	for i, s := range result.RebalanceSteps {
		steps[i] = int64(s)
	}

	var runID int64
	err = tx.QueryRow(`
		INSERT INTO backtest_runs (
			pair, protocol, granularity, range_type, range_width_pct,
			investment_usd, apr_mode, gas_per_rebalance_usd,
			data_points, rebalances, rebalance_steps, annualized_volatility,
			final_value_usd, return_usd, return_pct, apr_pct,
			fees_usd, net_fees_usd, gas_usd, net_gain_vs_hold_usd,
			impermanent_loss_pct, max_drawdown_pct, max_gain_pct, time_in_range_pct
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		) RETURNING run_id`,
		pair, protocol, string(params.Granularity), string(params.RangeType), params.RangeWidthPct,
		params.InvestmentUSD, string(params.APRMode), params.GasPerRebalanceUSD,
		result.DataPoints, final.Rebalances, pq.Array(steps), result.Volatility,
		final.TotalValueUSD, final.ReturnUSD, final.ReturnPct, final.APRPct,
		final.FeesUSD, final.NetFeesUSD, final.GasUSD, final.NetGainVsHoldUSD,
		final.ImpermanentLossPct, final.MaxDrawdownPct, final.MaxGainPct, final.TimeInRangePct,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert backtest run: %w", err)
	}

	stepStmt, err := tx.Prepare(`
		INSERT INTO run_steps (run_id, step_index, step_timestamp, status)
		VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare step insert: %w", err)
	}
	defer stepStmt.Close()

	for i, status := range result.Statuses {
		statusJSON, err := json.Marshal(status)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal status at step %d: %w", i, err)
		}
		if _, err := stepStmt.Exec(runID, i, status.Timestamp, statusJSON); err != nil {
			return 0, fmt.Errorf("failed to insert step %d: %w", i, err)
		}
	}

	subStmt, err := tx.Prepare(`
		INSERT INTO sub_positions (run_id, sub_index, data_points, fees_usd, gas_usd, start_capital_usd)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare sub-position insert: %w", err)
	}
	defer subStmt.Close()

	for i, sub := range result.SubPositions {
		if _, err := subStmt.Exec(runID, i, sub.DataPoints, sub.FeesUSD, sub.GasUSD, sub.StartCapitalUSD); err != nil {
			return 0, fmt.Errorf("failed to insert sub-position %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	log.Info().
		Int64("runID", runID).
		Str("pair", pair).
		Int("steps", len(result.Statuses)).
		Int("subPositions", len(result.SubPositions)).
		Msg("Saved backtest run")

	return runID, nil
}
