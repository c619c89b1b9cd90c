package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/rangeworks/clb/internal/types"
)

// RunSummary is the summary row of one persisted backtest run.
type RunSummary struct {
	RunID              int64     `json:"run_id"`
	CreatedAt          time.Time `json:"created_at"`
	Pair               string    `json:"pair"`
	Protocol           string    `json:"protocol"`
	Granularity        string    `json:"granularity"`
	RangeType          string    `json:"range_type"`
	RangeWidthPct      float64   `json:"range_width_pct"`
	InvestmentUSD      float64   `json:"investment_usd"`
	APRMode            string    `json:"apr_mode"`
	GasPerRebalanceUSD float64   `json:"gas_per_rebalance_usd"`

	DataPoints     int     `json:"data_points"`
	Rebalances     int     `json:"rebalances"`
	RebalanceSteps []int64 `json:"rebalance_steps"`
	Volatility     float64 `json:"annualized_volatility"`

	FinalValueUSD      float64 `json:"final_value_usd"`
	ReturnUSD          float64 `json:"return_usd"`
	ReturnPct          float64 `json:"return_pct"`
	APRPct             float64 `json:"apr_pct"`
	FeesUSD            float64 `json:"fees_usd"`
	NetFeesUSD         float64 `json:"net_fees_usd"`
	GasUSD             float64 `json:"gas_usd"`
	NetGainVsHoldUSD   float64 `json:"net_gain_vs_hold_usd"`
	ImpermanentLossPct float64 `json:"impermanent_loss_pct"`
	MaxDrawdownPct     float64 `json:"max_drawdown_pct"`
	MaxGainPct         float64 `json:"max_gain_pct"`
	TimeInRangePct     float64 `json:"time_in_range_pct"`
}

const runColumns = `
	run_id, created_at, pair, protocol, granularity, range_type, range_width_pct,
	investment_usd, apr_mode, gas_per_rebalance_usd,
	data_points, rebalances, rebalance_steps, annualized_volatility,
	final_value_usd, return_usd, return_pct, apr_pct,
	fees_usd, net_fees_usd, gas_usd, net_gain_vs_hold_usd,
	impermanent_loss_pct, max_drawdown_pct, max_gain_pct, time_in_range_pct`

func scanRun(scanner interface{ Scan(...any) error }) (RunSummary, error) {
	var run RunSummary
	err := scanner.Scan(
		&run.RunID, &run.CreatedAt, &run.Pair, &run.Protocol, &run.Granularity,
		&run.RangeType, &run.RangeWidthPct,
		&run.InvestmentUSD, &run.APRMode, &run.GasPerRebalanceUSD,
		&run.DataPoints, &run.Rebalances, pq.Array(&run.RebalanceSteps), &run.Volatility,
		&run.FinalValueUSD, &run.ReturnUSD, &run.ReturnPct, &run.APRPct,
		&run.FeesUSD, &run.NetFeesUSD, &run.GasUSD, &run.NetGainVsHoldUSD,
		&run.ImpermanentLossPct, &run.MaxDrawdownPct, &run.MaxGainPct, &run.TimeInRangePct,
	)
	return run, err
}

// GetRecentRuns retrieves recent backtest runs, newest first.
func GetRecentRuns(limit int) ([]RunSummary, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 10 // Default limit
	}

	rows, err := DB.Query(
		"SELECT "+runColumns+" FROM backtest_runs ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query recent runs")
		return nil, fmt.Errorf("failed to query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan run row")
			continue // Skip this row and continue with others
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	log.Info().Int("count", len(runs)).Int("limit", limit).Msg("Retrieved recent runs")
	return runs, nil
}

// GetRunByID retrieves a specific run by its ID.
func GetRunByID(runID int64) (*RunSummary, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	run, err := scanRun(DB.QueryRow(
		"SELECT "+runColumns+" FROM backtest_runs WHERE run_id = $1", runID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run with ID %d not found", runID)
		}
		log.Error().Err(err).Int64("run_id", runID).Msg("Failed to query run by ID")
		return nil, fmt.Errorf("failed to query run by ID: %w", err)
	}

	return &run, nil
}

// GetRunSteps retrieves the full status series of one run, in step order.
func GetRunSteps(runID int64) ([]types.PositionStatus, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := DB.Query(
		"SELECT status FROM run_steps WHERE run_id = $1 ORDER BY step_index", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run steps: %w", err)
	}
	defer rows.Close()

	var statuses []types.PositionStatus
	for rows.Next() {
		var statusJSON []byte
		if err := rows.Scan(&statusJSON); err != nil {
			log.Error().Err(err).Int64("run_id", runID).Msg("Failed to scan step row")
			continue
		}
		var status types.PositionStatus
		if err := json.Unmarshal(statusJSON, &status); err != nil {
			log.Error().Err(err).Int64("run_id", runID).Msg("Failed to unmarshal step status")
			continue
		}
		statuses = append(statuses, status)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return statuses, nil
}

// GetRunSubPositions retrieves the realized sub-position ledger of one run.
func GetRunSubPositions(runID int64) ([]types.SubPosition, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := DB.Query(`
		SELECT data_points, fees_usd, gas_usd, start_capital_usd
		FROM sub_positions WHERE run_id = $1 ORDER BY sub_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub-positions: %w", err)
	}
	defer rows.Close()

	var subs []types.SubPosition
	for rows.Next() {
		var sub types.SubPosition
		if err := rows.Scan(&sub.DataPoints, &sub.FeesUSD, &sub.GasUSD, &sub.StartCapitalUSD); err != nil {
			log.Error().Err(err).Int64("run_id", runID).Msg("Failed to scan sub-position row")
			continue
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return subs, nil
}
