/*

This file contains the position lifecycle engine: the stateful core that owns
a concentrated-liquidity position's range, balances, liquidity units and
sub-position history. It advances on each snapshot, executes rebalances when
the driver asks for one, and is Closed by a terminal rebalance. One position
per backtest; the type holds no package-level state and is not safe for
concurrent use.

*/

package position

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rangeworks/clb/internal/allocator"
	"github.com/rangeworks/clb/internal/fees"
	"github.com/rangeworks/clb/internal/logger"
	"github.com/rangeworks/clb/internal/ticks"
	"github.com/rangeworks/clb/internal/types"
)

var (
	ErrClosed           = errors.New("position is closed")
	ErrInvalidConfig    = errors.New("invalid position configuration")
	ErrCapitalDepleted  = errors.New("position capital depleted")
	ErrDegenerateSample = errors.New("snapshot price is unusable")
)

// Config describes how a position is constructed. Zero tick spacing defaults
// to 1; protocol presets fill spacing and decimals (see internal/protocol).
type Config struct {
	Token0 types.Token
	Token1 types.Token

	InvestmentUSD float64
	RangeType     types.RangeType
	RangeWidthPct float64 // total band width around the entry price, e.g. 50 for +/-25%
	TickSpacing   int

	Granularity types.Granularity
	APRMode     types.APRMode

	Initial types.PoolSnapshot
}

// Position simulates exactly one concentrated-liquidity position over an
// ordered snapshot series.
type Position struct {
	cfg Config
	log zerolog.Logger

	// Range state
	tickLower  int
	tickUpper  int
	priceLower float64
	priceUpper float64

	// Holdings
	amount0       float64
	amount1       float64
	liquidity     decimal.Decimal
	lpSharePct    float64
	poolLiquidity decimal.Decimal

	// Market state
	timestamp time.Time
	tick      int
	price0    float64
	price1    float64
	inRange   bool
	closed    bool

	// Ledger
	feeEngine       *fees.Engine
	subs            []types.SubPosition
	subPoints       int
	subFeesUSD      float64
	subStartCapital float64
	totalFeesUSD    float64
	totalGasUSD     float64
	totalPoints     int
	activePoints    int
	rebalances      int

	// Baselines for derived metrics
	initialInvestment float64
	initialPrice0     float64
	holdAmount0       float64
	holdAmount1       float64
	peakValueUSD      float64
	maxDrawdownPct    float64
	maxGainPct        float64
	gainSeen          bool
}

// New constructs an Active position from the initial investment and the first
// snapshot, allocating the capital into the configured range.
func New(cfg Config) (*Position, error) {
	if cfg.InvestmentUSD <= 0 {
		return nil, fmt.Errorf("%w: investment must be positive", ErrInvalidConfig)
	}
	if cfg.RangeType == types.RangePercentage && cfg.RangeWidthPct <= 0 {
		return nil, fmt.Errorf("%w: percentage range needs a positive width", ErrInvalidConfig)
	}
	if cfg.Initial.Price0 <= 0 {
		return nil, fmt.Errorf("%w: initial price must be positive", ErrInvalidConfig)
	}
	if cfg.TickSpacing <= 0 {
		cfg.TickSpacing = 1
	}

	p := &Position{
		cfg:               cfg,
		log:               logger.GetForComponent("position"),
		price0:            cfg.Initial.Price0,
		price1:            quotePrice(cfg.Initial.Price1),
		timestamp:         cfg.Initial.Timestamp,
		feeEngine:         fees.NewEngine(cfg.Token0.Decimals, cfg.Token1.Decimals),
		initialInvestment: cfg.InvestmentUSD,
		initialPrice0:     cfg.Initial.Price0,
		peakValueUSD:      cfg.InvestmentUSD,
	}

	// Hold baseline: the original capital split 50/50 and never touched.
	p.holdAmount0 = cfg.InvestmentUSD / 2 / (p.price0 * p.price1)
	p.holdAmount1 = cfg.InvestmentUSD / 2 / p.price1

	if err := p.allocate(cfg.InvestmentUSD, p.price0, cfg.Initial.PoolLiquidity); err != nil {
		return nil, err
	}

	tick, err := ticks.PriceToTick(p.price0, cfg.Token0.Decimals, cfg.Token1.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	p.tick = tick
	p.inRange = true
	p.subStartCapital = cfg.InvestmentUSD

	// Baseline the fee accumulators; no fees can accrue before the first step.
	p.feeEngine.Seed(cfg.Initial.FeeGrowth0, cfg.Initial.FeeGrowth1)

	p.log.Debug().
		Float64("investment", cfg.InvestmentUSD).
		Float64("priceLower", p.priceLower).
		Float64("priceUpper", p.priceUpper).
		Str("liquidity", p.liquidity.String()).
		Msg("Position opened")

	return p, nil
}

// allocate recomputes the range around price and deploys capital into it.
func (p *Position) allocate(capitalUSD, price float64, poolLiquidity decimal.Decimal) error {
	d0, d1 := p.cfg.Token0.Decimals, p.cfg.Token1.Decimals

	var (
		alloc allocator.Allocation
		err   error
	)
	if p.cfg.RangeType == types.RangeFull {
		alloc, err = allocator.AllocateFullRange(capitalUSD, price, p.price1, d0, d1, poolLiquidity)
		if err != nil {
			return err
		}
		p.tickLower, p.tickUpper = rangeTicks(alloc.PriceLower, alloc.PriceUpper, d0, d1, p.cfg.TickSpacing)
	} else {
		half := p.cfg.RangeWidthPct / 200
		lower := price * (1 - half)
		upper := price * (1 + half)
		if lower <= 0 || lower >= upper {
			return fmt.Errorf("%w: width %.2f%% collapses the band", ErrInvalidConfig, p.cfg.RangeWidthPct)
		}

		// Snap the band to the protocol tick grid, then allocate against the
		// snapped bounds so allocation and range agree exactly.
		p.tickLower, p.tickUpper = rangeTicks(lower, upper, d0, d1, p.cfg.TickSpacing)
		lower = ticks.TickToPrice(p.tickUpper, d0, d1)
		upper = ticks.TickToPrice(p.tickLower, d0, d1)

		alloc, err = allocator.Allocate(capitalUSD, price, lower, upper, p.price1, d0, d1, poolLiquidity)
		if err != nil {
			return err
		}
	}

	p.amount0 = alloc.Amount0
	p.amount1 = alloc.Amount1
	p.liquidity = alloc.Liquidity
	p.lpSharePct = alloc.LPSharePct
	p.priceLower = alloc.PriceLower
	p.priceUpper = alloc.PriceUpper
	p.poolLiquidity = poolLiquidity
	return nil
}

// rangeTicks maps a price band to an aligned tick range. The tick scale is
// inverted relative to price, so the upper price bound yields the lower tick.
func rangeTicks(priceLower, priceUpper float64, decimals0, decimals1, spacing int) (int, int) {
	lo, errLo := ticks.PriceToTick(priceUpper, decimals0, decimals1)
	hi, errHi := ticks.PriceToTick(priceLower, decimals0, decimals1)
	if errLo != nil || errHi != nil {
		return 0, 0
	}
	lo = ticks.Align(lo, spacing)
	hi = ticks.Align(hi, spacing)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Advance consumes the next snapshot and returns the USD fee income earned in
// the elapsed interval. wasRebalanced marks the interval as a rebalance
// boundary: no continuous fee-growth baseline spans it, so income is zero and
// only the baseline advances.
func (p *Position) Advance(snap types.PoolSnapshot, wasRebalanced bool) (float64, error) {
	if p.closed {
		return 0, ErrClosed
	}

	p.totalPoints++
	p.subPoints++
	p.timestamp = snap.Timestamp

	tick, err := ticks.PriceToTick(snap.Price0, p.cfg.Token0.Decimals, p.cfg.Token1.Decimals)
	if err != nil {
		// A single bad sample must not abort the run: keep prior market
		// state, accrue nothing, and pick the series back up next step.
		p.log.Warn().
			Time("timestamp", snap.Timestamp).
			Float64("price", snap.Price0).
			Msg("Skipping unusable snapshot")
		return 0, nil
	}

	p.tick = tick
	p.price0 = snap.Price0
	p.price1 = quotePrice(snap.Price1)

	fullRange := p.cfg.RangeType == types.RangeFull
	p.inRange = fullRange || (tick >= p.tickLower && tick <= p.tickUpper)
	if p.inRange {
		p.activePoints++
	}

	fraction := fees.ActiveLiquidityFraction(
		snap.PriceLow, snap.PriceHigh,
		p.tickLower, p.tickUpper,
		p.cfg.Token0.Decimals, p.cfg.Token1.Decimals,
		fullRange,
	)

	skip := !p.inRange || wasRebalanced
	fee := p.feeEngine.Accrue(snap.FeeGrowth0, snap.FeeGrowth1, p.liquidity, p.price0*p.price1, p.price1, fraction, skip)

	p.totalFeesUSD += fee
	p.subFeesUSD += fee
	p.trackValueExtremes()

	return fee, nil
}

// Rebalance closes the current sub-position and, unless isClosing, reopens
// the position around newTick with the accrued fees rolled into capital and
// the gas cost deducted. A closing rebalance finalizes bookkeeping only: no
// new allocation, balances untouched.
func (p *Position) Rebalance(newTick int, poolLiquidity decimal.Decimal, gasCostUSD float64, isClosing bool) error {
	if p.closed {
		return ErrClosed
	}
	if gasCostUSD < 0 {
		gasCostUSD = 0
	}

	p.subs = append(p.subs, types.SubPosition{
		DataPoints:      p.subPoints,
		FeesUSD:         p.subFeesUSD,
		GasUSD:          gasCostUSD,
		StartCapitalUSD: p.subStartCapital,
	})
	p.totalGasUSD += gasCostUSD

	if isClosing {
		p.closed = true
		p.log.Debug().
			Int("subPositions", len(p.subs)).
			Float64("totalFees", p.totalFeesUSD).
			Msg("Position closed")
		return nil
	}

	capital := p.TokenValueUSD() + p.subFeesUSD - gasCostUSD
	if capital <= 0 {
		return ErrCapitalDepleted
	}

	price := ticks.TickToPrice(newTick, p.cfg.Token0.Decimals, p.cfg.Token1.Decimals)
	if err := p.allocate(capital, price, poolLiquidity); err != nil {
		return err
	}

	p.tick = newTick
	p.price0 = price
	p.inRange = true
	p.subPoints = 0
	p.subFeesUSD = 0
	p.subStartCapital = capital
	p.rebalances++

	p.log.Debug().
		Int("rebalance", p.rebalances).
		Float64("capital", capital).
		Float64("priceLower", p.priceLower).
		Float64("priceUpper", p.priceUpper).
		Msg("Position rebalanced")

	return nil
}

// trackValueExtremes maintains the peak/trough bookkeeping for drawdown and
// max-gain reporting. Trough tracking only arms once the portfolio value has
// exceeded the initial investment, so the pre-gain period cannot register a
// spurious drawdown.
func (p *Position) trackValueExtremes() {
	v := p.TotalValueUSD()
	if v > p.peakValueUSD {
		p.peakValueUSD = v
	}
	if gain := (v - p.initialInvestment) / p.initialInvestment * 100; gain > p.maxGainPct {
		p.maxGainPct = gain
	}
	if !p.gainSeen {
		if v > p.initialInvestment {
			p.gainSeen = true
		}
		return
	}
	if p.peakValueUSD > 0 {
		if dd := (p.peakValueUSD - v) / p.peakValueUSD * 100; dd > p.maxDrawdownPct {
			p.maxDrawdownPct = dd
		}
	}
}

func quotePrice(price1 float64) float64 {
	if price1 <= 0 {
		return 1
	}
	return price1
}
