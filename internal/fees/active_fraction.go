package fees

import (
	"math"

	"github.com/rangeworks/clb/internal/ticks"
)

// ActiveLiquidityFraction estimates what percentage of an interval the
// position's range overlapped the traded price band, using only the
// interval's high and low. This is a documented approximation: the intraperiod
// price path is unknown, so the band is treated as uniformly traversed.
//
// priceLow/priceHigh are quoted prices; the band is converted to tick space
// and intersected with [tickLower, tickUpper]. Degenerate inputs (non-finite,
// non-positive, no overlap) yield 0. A full-range position is always 100.
func ActiveLiquidityFraction(priceLow, priceHigh float64, tickLower, tickUpper, decimals0, decimals1 int, fullRange bool) float64 {
	if fullRange {
		return 100
	}
	if !finitePositive(priceLow) || !finitePositive(priceHigh) {
		return 0
	}
	if priceLow > priceHigh {
		priceLow, priceHigh = priceHigh, priceLow
	}

	// Price-to-tick inverts, so the high price maps to the low tick.
	bandLow, err := ticks.PriceToTick(priceHigh, decimals0, decimals1)
	if err != nil {
		return 0
	}
	bandHigh, err := ticks.PriceToTick(priceLow, decimals0, decimals1)
	if err != nil {
		return 0
	}
	if bandLow > bandHigh {
		bandLow, bandHigh = bandHigh, bandLow
	}

	// Flat interval: the whole period traded at one tick.
	if bandLow == bandHigh {
		if bandLow >= tickLower && bandLow <= tickUpper {
			return 100
		}
		return 0
	}

	overlap := min(bandHigh, tickUpper) - max(bandLow, tickLower)
	if overlap <= 0 {
		return 0
	}

	fraction := float64(overlap) / float64(bandHigh-bandLow) * 100
	return math.Min(math.Max(fraction, 0), 100)
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
