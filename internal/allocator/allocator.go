/*

This file contains the range-based token allocation: given an investment and a
price band, how much of each leg the position holds and how many liquidity
units it contributes. The three-region split and the liquidity derivation use
the same square-root-price representation (see scale.go).

*/

package allocator

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInvestment = errors.New("investment must be finite and positive")
	ErrInvalidPrice      = errors.New("price must be finite and positive")
	ErrInvalidBounds     = errors.New("price bounds must satisfy 0 < lower < upper")
)

// Full-range positions collapse to a very wide but finite band around the
// entry price so the liquidity-unit formula stays numerically stable.
const (
	fullRangeLowerFactor = 0.01
	fullRangeUpperFactor = 100.0
)

// Allocation is the result of deploying an investment into a price band.
// Amounts are in human token units; Liquidity is in raw pool liquidity units.
type Allocation struct {
	Amount0    float64
	Amount1    float64
	Liquidity  decimal.Decimal
	LPSharePct float64
	PriceLower float64
	PriceUpper float64
}

// FullRangeBounds returns the finite band that stands in for a [0, inf)
// full-range position.
func FullRangeBounds(price float64) (lower, upper float64) {
	return price * fullRangeLowerFactor, price * fullRangeUpperFactor
}

// Allocate splits investmentUSD across the two legs for a position over
// [priceLower, priceUpper] at the current pool price (quote per unit base).
// usdPrice1 is the USD price of the quote leg, used to translate USD capital
// into token amounts. poolLiquidity is the pool-wide liquidity used for the
// position's share; pass a zero decimal when unknown.
func Allocate(investmentUSD, price, priceLower, priceUpper, usdPrice1 float64, decimals0, decimals1 int, poolLiquidity decimal.Decimal) (Allocation, error) {
	if !isFinitePositive(investmentUSD) {
		return Allocation{}, ErrInvalidInvestment
	}
	if !isFinitePositive(price) || !isFinitePositive(usdPrice1) {
		return Allocation{}, ErrInvalidPrice
	}
	if !isFinitePositive(priceLower) || !isFinitePositive(priceUpper) || priceLower >= priceUpper {
		return Allocation{}, ErrInvalidBounds
	}

	frac0 := valueFraction0(price, priceLower, priceUpper, decimals0, decimals1)
	return build(investmentUSD, frac0, price, priceLower, priceUpper, usdPrice1, decimals0, decimals1, poolLiquidity)
}

// AllocateFullRange deploys the investment as a full-range position: the band
// collapses to [price/100, price*100] and the capital is split 50/50
// regardless of the band approximation.
func AllocateFullRange(investmentUSD, price, usdPrice1 float64, decimals0, decimals1 int, poolLiquidity decimal.Decimal) (Allocation, error) {
	if !isFinitePositive(investmentUSD) {
		return Allocation{}, ErrInvalidInvestment
	}
	if !isFinitePositive(price) || !isFinitePositive(usdPrice1) {
		return Allocation{}, ErrInvalidPrice
	}
	lower, upper := FullRangeBounds(price)
	return build(investmentUSD, 0.5, price, lower, upper, usdPrice1, decimals0, decimals1, poolLiquidity)
}

func build(investmentUSD, frac0, price, priceLower, priceUpper, usdPrice1 float64, decimals0, decimals1 int, poolLiquidity decimal.Decimal) (Allocation, error) {
	usdPrice0 := price * usdPrice1

	alloc := Allocation{
		Amount0:    investmentUSD * frac0 / usdPrice0,
		Amount1:    investmentUSD * (1 - frac0) / usdPrice1,
		PriceLower: priceLower,
		PriceUpper: priceUpper,
	}

	alloc.Liquidity = LiquidityForAmounts(alloc.Amount0, alloc.Amount1, price, priceLower, priceUpper, decimals0, decimals1)
	if poolLiquidity.IsPositive() {
		share, _ := alloc.Liquidity.Div(poolLiquidity).Mul(decimal.NewFromInt(100)).Float64()
		alloc.LPSharePct = share
	}
	return alloc, nil
}

// valueFraction0 returns the fraction of position value held in the base leg
// for the three-region concentrated-liquidity split.
func valueFraction0(price, priceLower, priceUpper float64, decimals0, decimals1 int) float64 {
	switch {
	case price <= priceLower:
		return 1
	case price >= priceUpper:
		return 0
	}

	s := SqrtPriceX96(price, decimals0, decimals1)
	sa := SqrtPriceX96(priceLower, decimals0, decimals1)
	sb := SqrtPriceX96(priceUpper, decimals0, decimals1)

	// Per unit of liquidity the base leg is worth s*(sb-s)/sb and the quote
	// leg (s-sa), both in the same raw scale, so the Q96 factor cancels.
	value0 := s.Mul(sb.Sub(s)).Div(sb)
	total := value0.Add(s.Sub(sa))
	if !total.IsPositive() {
		return 0
	}
	frac, _ := value0.Div(total).Float64()
	return frac
}

// LiquidityForAmounts derives the raw liquidity-unit count for the given
// human token amounts over [priceLower, priceUpper] at the current price,
// mirroring the three allocation regions: below range only the base leg
// binds, above range only the quote leg, and inside the range the binding
// constraint is whichever single-asset estimate is smaller.
func LiquidityForAmounts(amount0, amount1, price, priceLower, priceUpper float64, decimals0, decimals1 int) decimal.Decimal {
	s := SqrtPriceX96(price, decimals0, decimals1)
	sa := SqrtPriceX96(priceLower, decimals0, decimals1)
	sb := SqrtPriceX96(priceUpper, decimals0, decimals1)

	raw0 := decimal.NewFromFloat(amount0).Mul(pow10(decimals0))
	raw1 := decimal.NewFromFloat(amount1).Mul(pow10(decimals1))

	switch {
	case price <= priceLower:
		return liquidity0(raw0, sa, sb)
	case price >= priceUpper:
		return liquidity1(raw1, sa, sb)
	default:
		return decimal.Min(liquidity0(raw0, s, sb), liquidity1(raw1, sa, s))
	}
}

// liquidity0 is the single-asset liquidity estimate from the base leg over
// [sqrtLower, sqrtUpper] in X96 representation.
func liquidity0(raw0, sqrtLower, sqrtUpper decimal.Decimal) decimal.Decimal {
	span := sqrtUpper.Sub(sqrtLower)
	if !span.IsPositive() {
		return decimal.Zero
	}
	return raw0.Mul(sqrtLower).Mul(sqrtUpper).Div(Q96).Div(span)
}

// liquidity1 is the single-asset liquidity estimate from the quote leg.
func liquidity1(raw1, sqrtLower, sqrtUpper decimal.Decimal) decimal.Decimal {
	span := sqrtUpper.Sub(sqrtLower)
	if !span.IsPositive() {
		return decimal.Zero
	}
	return raw1.Mul(Q96).Div(span)
}

func pow10(decimals int) decimal.Decimal {
	return decimal.New(1, int32(decimals))
}

func isFinitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
