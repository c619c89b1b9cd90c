/*

Derived metrics and read-only accessors. Everything here is computed on
demand from the position ledger; nothing is stored per step.

*/

package position

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/rangeworks/clb/internal/types"
)

// TokenValueUSD is the USD value of the token balances at current prices.
func (p *Position) TokenValueUSD() float64 {
	return p.amount0*p.price0*p.price1 + p.amount1*p.price1
}

// TotalValueUSD is the token value plus fees accrued in the still-open
// interval (fees are only rolled into balances on a rebalance).
func (p *Position) TotalValueUSD() float64 {
	return p.TokenValueUSD() + p.subFeesUSD
}

// HoldValueUSD is the value of the original 50/50 split held without LP fees
// or rebalancing, the baseline for NetGainVsHoldUSD.
func (p *Position) HoldValueUSD() float64 {
	return p.holdAmount0*p.price0*p.price1 + p.holdAmount1*p.price1
}

// NetGainVsHoldUSD compares the position (including accrued fees) to the
// pure-hold baseline.
func (p *Position) NetGainVsHoldUSD() float64 {
	return p.TotalValueUSD() - p.HoldValueUSD()
}

// ImpermanentLossPct is the standard single-price-ratio approximation for a
// 50/50 position, IL% = (2*sqrt(r)/(1+r) - 1) * 100 with r the current over
// initial price of the base leg. Applied regardless of the actual range
// width; see DESIGN.md for the open question on range-scoped IL.
func (p *Position) ImpermanentLossPct() float64 {
	if p.initialPrice0 <= 0 {
		return 0
	}
	r := p.price0 / p.initialPrice0
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return (2*math.Sqrt(r)/(1+r) - 1) * 100
}

// RunningAPRPct annualizes net fees over the initial capital.
func (p *Position) RunningAPRPct() float64 {
	if p.totalPoints == 0 || p.initialInvestment <= 0 {
		return 0
	}
	net := p.totalFeesUSD - p.totalGasUSD
	perYear := p.cfg.Granularity.PeriodsPerYear()
	return net / p.initialInvestment * perYear / float64(p.totalPoints) * 100
}

// WeightedAPRPct is the duration-weighted average of each sub-position's own
// annualized net return, including the still-open sub-position. With zero
// rebalances it coincides with the running APR.
func (p *Position) WeightedAPRPct() float64 {
	perYear := p.cfg.Granularity.PeriodsPerYear()

	subs := p.subs
	if !p.closed && p.subPoints > 0 {
		subs = append(append([]types.SubPosition(nil), subs...), types.SubPosition{
			DataPoints:      p.subPoints,
			FeesUSD:         p.subFeesUSD,
			StartCapitalUSD: p.subStartCapital,
		})
	}

	var weighted, totalDuration float64
	for _, sub := range subs {
		if sub.DataPoints <= 0 || sub.StartCapitalUSD <= 0 {
			continue
		}
		apr := (sub.FeesUSD - sub.GasUSD) / sub.StartCapitalUSD * perYear / float64(sub.DataPoints)
		weighted += apr * float64(sub.DataPoints)
		totalDuration += float64(sub.DataPoints)
	}
	if totalDuration == 0 {
		return 0
	}
	return weighted / totalDuration * 100
}

// APRPct reports the headline APR according to the configured mode.
func (p *Position) APRPct() float64 {
	if p.cfg.APRMode == types.APRModeCompounding {
		return p.WeightedAPRPct()
	}
	return p.RunningAPRPct()
}

// TimeInRangePct is the share of data points the position range was active.
func (p *Position) TimeInRangePct() float64 {
	if p.totalPoints == 0 {
		return 0
	}
	return float64(p.activePoints) / float64(p.totalPoints) * 100
}

// MaxDrawdownPct is the peak-to-trough loss, only meaningful once a gain has
// been observed.
func (p *Position) MaxDrawdownPct() float64 { return p.maxDrawdownPct }

// MaxGainPct is the best observed gain over the initial investment.
func (p *Position) MaxGainPct() float64 { return p.maxGainPct }

// TotalFeesUSD is the cumulative fee income over the whole run.
func (p *Position) TotalFeesUSD() float64 { return p.totalFeesUSD }

// NetFeesUSD is cumulative fees minus cumulative gas.
func (p *Position) NetFeesUSD() float64 { return p.totalFeesUSD - p.totalGasUSD }

// TotalGasUSD is the cumulative gas attributed across rebalances.
func (p *Position) TotalGasUSD() float64 { return p.totalGasUSD }

// Rebalances is the number of non-closing rebalances executed.
func (p *Position) Rebalances() int { return p.rebalances }

// SubPositions returns a copy of the completed sub-position history.
func (p *Position) SubPositions() []types.SubPosition {
	return append([]types.SubPosition(nil), p.subs...)
}

// Amounts returns the current token balances in human units.
func (p *Position) Amounts() (amount0, amount1 float64) { return p.amount0, p.amount1 }

// Range returns the current tick range and its price bounds.
func (p *Position) Range() (tickLower, tickUpper int, priceLower, priceUpper float64) {
	return p.tickLower, p.tickUpper, p.priceLower, p.priceUpper
}

// Liquidity is the position's raw liquidity-unit count.
func (p *Position) Liquidity() decimal.Decimal { return p.liquidity }

// LPSharePct is the position's share of the pool-wide liquidity, as a
// percentage.
func (p *Position) LPSharePct() float64 { return p.lpSharePct }

// CurrentTick is the tick derived from the latest consumed snapshot.
func (p *Position) CurrentTick() int { return p.tick }

// IsOutOfRange reports whether the latest tick sits outside the range.
func (p *Position) IsOutOfRange() bool { return !p.inRange }

// IsClosed reports whether a terminal rebalance has finalized the position.
func (p *Position) IsClosed() bool { return p.closed }

// Status renders the external per-step view with the given annotation
// ("Start", "Rebalanced", "End" or empty).
func (p *Position) Status(note string) types.PositionStatus {
	total := p.TotalValueUSD()
	ret := total - p.initialInvestment
	return types.PositionStatus{
		Timestamp:          p.timestamp,
		Token0:             p.cfg.Token0.Symbol,
		Token1:             p.cfg.Token1.Symbol,
		Amount0:            p.amount0,
		Amount1:            p.amount1,
		Price:              p.price0,
		PriceLower:         p.priceLower,
		PriceUpper:         p.priceUpper,
		TotalValueUSD:      total,
		ReturnUSD:          ret,
		ReturnPct:          ret / p.initialInvestment * 100,
		APRPct:             p.APRPct(),
		NetGainVsHoldUSD:   p.NetGainVsHoldUSD(),
		CapitalDeployedUSD: p.subStartCapital,
		FeesUSD:            p.totalFeesUSD,
		NetFeesUSD:         p.NetFeesUSD(),
		GasUSD:             p.totalGasUSD,
		MaxDrawdownPct:     p.maxDrawdownPct,
		MaxGainPct:         p.maxGainPct,
		ImpermanentLossPct: p.ImpermanentLossPct(),
		TimeInRangePct:     p.TimeInRangePct(),
		OutOfRange:         !p.inRange,
		Rebalances:         p.rebalances,
		Note:               note,
	}
}
