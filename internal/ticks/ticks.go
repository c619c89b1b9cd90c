/*

Pure price/tick conversion in the base-1.0001 tick scale used by
concentrated-liquidity pools. The quoted price is inverted and scaled by the
pair's decimal difference before taking the logarithm, so the tick index
decreases as the quoted price rises: a range [tickLower, tickUpper] therefore
corresponds to the price band [priceUpper, priceLower].

*/

package ticks

import (
	"errors"
	"math"
)

const (
	// TickBase is the price ratio between two adjacent ticks.
	TickBase = 1.0001

	// MinTick and MaxTick are the protocol tick bounds.
	MinTick = -887272
	MaxTick = 887272
)

var (
	ErrInvalidPrice    = errors.New("price must be finite and positive")
	ErrTickOutOfBounds = errors.New("tick outside protocol bounds")
)

// PriceToTick maps a quoted price (asset1 per unit asset0) to the nearest
// discrete tick index. A non-finite or non-positive price is an unusable
// sample and is reported as an error rather than mapped.
func PriceToTick(price float64, decimals0, decimals1 int) (int, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidPrice
	}
	raw := (1 / price) * math.Pow(10, float64(decimals1-decimals0))
	tick := int(math.Round(math.Log(raw) / math.Log(TickBase)))
	if tick < MinTick || tick > MaxTick {
		return 0, ErrTickOutOfBounds
	}
	return tick, nil
}

// TickToPrice is the exact reverse of PriceToTick, used to report range
// bounds in price terms.
func TickToPrice(tick int, decimals0, decimals1 int) float64 {
	return math.Pow(10, float64(decimals1-decimals0)) / math.Pow(TickBase, float64(tick))
}

// Align snaps a tick to the nearest multiple of the protocol tick spacing.
func Align(tick, spacing int) int {
	if spacing <= 1 {
		return tick
	}
	return int(math.Round(float64(tick)/float64(spacing))) * spacing
}
