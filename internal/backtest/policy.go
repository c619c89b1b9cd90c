/*

Rebalance decision policies. The position engine never decides when to
rebalance; these policies are the driver-side logic that supplies the signal,
consulted by the runner after every advanced snapshot.

*/

package backtest

import (
	"github.com/rangeworks/clb/internal/analyzer"
	"github.com/rangeworks/clb/internal/position"
	"github.com/rangeworks/clb/internal/types"
)

// Policy decides, after each advanced snapshot, whether the runner should
// rebalance the position before the next step. history contains every
// snapshot consumed so far, in order, including the one just advanced.
type Policy interface {
	Name() string
	ShouldRebalance(step int, pos *position.Position, history []types.PoolSnapshot) bool
}

// IntervalPolicy rebalances on a fixed cadence of data points.
type IntervalPolicy struct {
	Every int
}

func (p IntervalPolicy) Name() string { return "interval" }

func (p IntervalPolicy) ShouldRebalance(step int, _ *position.Position, _ []types.PoolSnapshot) bool {
	if p.Every <= 0 {
		return false
	}
	return (step+1)%p.Every == 0
}

// OutOfRangePolicy rebalances once the position has been out of range for a
// number of consecutive data points. Patience 0 disables the policy rather
// than firing immediately.
type OutOfRangePolicy struct {
	Patience int

	streak int
}

func (p *OutOfRangePolicy) Name() string { return "out-of-range" }

func (p *OutOfRangePolicy) ShouldRebalance(_ int, pos *position.Position, _ []types.PoolSnapshot) bool {
	if p.Patience <= 0 {
		return false
	}
	if pos.IsOutOfRange() {
		p.streak++
	} else {
		p.streak = 0
	}
	if p.streak >= p.Patience {
		p.streak = 0
		return true
	}
	return false
}

// VolatilityPolicy rebalances when the annualized volatility over the
// trailing lookback window exceeds the trigger. The lookback doubles as a
// cooldown so one volatile stretch cannot fire on every step.
type VolatilityPolicy struct {
	Lookback    int
	Trigger     float64
	Granularity types.Granularity

	lastFired int
}

func (p *VolatilityPolicy) Name() string { return "volatility" }

func (p *VolatilityPolicy) ShouldRebalance(step int, _ *position.Position, history []types.PoolSnapshot) bool {
	if p.Lookback < 2 || p.Trigger <= 0 || len(history) < p.Lookback {
		return false
	}
	if p.lastFired > 0 && step-p.lastFired < p.Lookback {
		return false
	}

	window := history[len(history)-p.Lookback:]
	vol, err := analyzer.CalculateVolatility(window, p.Granularity.PeriodsPerYear())
	if err != nil || vol < p.Trigger {
		return false
	}
	p.lastFired = step
	return true
}

// CompositePolicy fires when any of its member policies fires. All members
// are consulted on every step so stateful members keep their counters
// current.
type CompositePolicy struct {
	Members []Policy
}

func (p CompositePolicy) Name() string { return "composite" }

func (p CompositePolicy) ShouldRebalance(step int, pos *position.Position, history []types.PoolSnapshot) bool {
	fired := false
	for _, member := range p.Members {
		if member.ShouldRebalance(step, pos, history) {
			fired = true
		}
	}
	return fired
}

// FromParameters assembles the policy set configured by the backtest
// parameters. Returns nil when no policy is enabled (the position then runs
// untouched to the end).
func FromParameters(params types.BacktestParameters) Policy {
	var members []Policy
	if params.RebalanceEveryN > 0 {
		members = append(members, IntervalPolicy{Every: params.RebalanceEveryN})
	}
	if params.OutOfRangePatience > 0 {
		members = append(members, &OutOfRangePolicy{Patience: params.OutOfRangePatience})
	}
	if params.VolatilityLookback >= 2 && params.VolatilityTrigger > 0 {
		members = append(members, &VolatilityPolicy{
			Lookback:    params.VolatilityLookback,
			Trigger:     params.VolatilityTrigger,
			Granularity: params.Granularity,
		})
	}
	switch len(members) {
	case 0:
		return nil
	case 1:
		return members[0]
	default:
		return CompositePolicy{Members: members}
	}
}
