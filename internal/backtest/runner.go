/*

The backtest runner: feeds an ordered snapshot series into a position,
consults the rebalance policy after every step, executes rebalances with the
configured gas cost, and closes the position at the end of the series.

*/

package backtest

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rangeworks/clb/internal/analyzer"
	"github.com/rangeworks/clb/internal/logger"
	"github.com/rangeworks/clb/internal/position"
	"github.com/rangeworks/clb/internal/types"
)

var ErrNotEnoughData = errors.New("backtest needs at least two snapshots")

// Result is the collected outcome of one backtest run.
type Result struct {
	Statuses       []types.PositionStatus `json:"statuses"`
	SubPositions   []types.SubPosition    `json:"sub_positions"`
	RebalanceSteps []int                  `json:"rebalance_steps"`
	DataPoints     int                    `json:"data_points"`
	Volatility     float64                `json:"annualized_volatility"`
	Final          types.PositionStatus   `json:"final"`
}

// Runner drives one position over a snapshot series. Each run must operate on
// its own position instance; the runner holds no cross-run state beyond its
// configuration.
type Runner struct {
	gasPerRebalanceUSD float64
	granularity        types.Granularity
	log                zerolog.Logger
}

// NewRunner creates a runner attributing the given flat gas cost to every
// rebalance, including the terminal close. The granularity annualizes the
// reported series volatility.
func NewRunner(gasPerRebalanceUSD float64, granularity types.Granularity) *Runner {
	return &Runner{
		gasPerRebalanceUSD: gasPerRebalanceUSD,
		granularity:        granularity,
		log:                logger.GetForComponent("backtest_runner"),
	}
}

// Run executes the backtest. snaps[0] must be the snapshot the position was
// constructed from; the remaining snapshots are advanced in order. policy may
// be nil, in which case the position runs untouched until the closing
// rebalance.
func (r *Runner) Run(pos *position.Position, snaps []types.PoolSnapshot, policy Policy) (*Result, error) {
	if len(snaps) < 2 {
		return nil, ErrNotEnoughData
	}

	statuses := make([]types.PositionStatus, 0, len(snaps))
	statuses = append(statuses, pos.Status("Start"))

	history := snaps[:1:1]
	var rebalanceSteps []int
	wasRebalanced := false

	for i, snap := range snaps[1:] {
		fee, err := pos.Advance(snap, wasRebalanced)
		if err != nil {
			return nil, fmt.Errorf("advance at step %d: %w", i+1, err)
		}
		wasRebalanced = false
		history = append(history, snap)

		note := ""
		lastStep := i == len(snaps)-2
		if policy != nil && !lastStep && policy.ShouldRebalance(i, pos, history) {
			if err := pos.Rebalance(pos.CurrentTick(), snap.PoolLiquidity, r.gasPerRebalanceUSD, false); err != nil {
				return nil, fmt.Errorf("rebalance at step %d: %w", i+1, err)
			}
			note = "Rebalanced"
			wasRebalanced = true
			rebalanceSteps = append(rebalanceSteps, i+1)
			r.log.Debug().Int("step", i+1).Float64("fee", fee).Msg("Rebalanced position")
		}

		statuses = append(statuses, pos.Status(note))
	}

	last := snaps[len(snaps)-1]
	if err := pos.Rebalance(pos.CurrentTick(), last.PoolLiquidity, r.gasPerRebalanceUSD, true); err != nil {
		return nil, fmt.Errorf("closing rebalance: %w", err)
	}
	statuses[len(statuses)-1] = pos.Status("End")

	// Series volatility is informational; a too-short series simply reports 0.
	vol, _ := analyzer.CalculateVolatility(history, r.granularity.PeriodsPerYear())

	result := &Result{
		Statuses:       statuses,
		SubPositions:   pos.SubPositions(),
		RebalanceSteps: rebalanceSteps,
		DataPoints:     len(snaps),
		Volatility:     vol,
		Final:          statuses[len(statuses)-1],
	}

	r.log.Info().
		Int("dataPoints", result.DataPoints).
		Int("rebalances", len(rebalanceSteps)).
		Float64("finalValue", result.Final.TotalValueUSD).
		Float64("apr", result.Final.APRPct).
		Msg("Backtest run completed")

	return result, nil
}
