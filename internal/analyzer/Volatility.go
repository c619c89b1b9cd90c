/*

Annualized historical volatility over a pool snapshot window, used by the
volatility rebalance policy and the run report.

*/

package analyzer

import (
	"errors"
	"math"
	"sort"

	"github.com/rangeworks/clb/internal/types"
)

// ErrInsufficientData indicates that not enough data points were provided
// to calculate volatility (need at least 2 points for 1 return).
var ErrInsufficientData = errors.New("insufficient data points to calculate volatility")

// CalculateVolatility calculates the annualized historical volatility of the
// base-leg price from a series of snapshots, using logarithmic returns and
// population standard deviation. Snapshots are sorted chronologically first.
// The annualizationFactor should match the data frequency (8760 for hourly,
// 365 for daily; see Granularity.PeriodsPerYear).
func CalculateVolatility(snapshots []types.PoolSnapshot, annualizationFactor float64) (float64, error) {
	n := len(snapshots)
	if n < 2 {
		return 0, ErrInsufficientData
	}

	ordered := append([]types.PoolSnapshot(nil), snapshots...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	logReturns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		current := ordered[i].Price0
		previous := ordered[i-1].Price0

		// Non-positive prices would break math.Log; skip the pair.
		if previous <= 0 || current <= 0 {
			continue
		}
		logReturns = append(logReturns, math.Log(current/previous))
	}

	numReturns := len(logReturns)
	if numReturns == 0 {
		return 0, ErrInsufficientData
	}

	var sum float64
	for _, r := range logReturns {
		sum += r
	}
	mean := sum / float64(numReturns)

	var sumSqDiff float64
	for _, r := range logReturns {
		sumSqDiff += (r - mean) * (r - mean)
	}
	variance := sumSqDiff / float64(numReturns)

	return math.Sqrt(variance) * math.Sqrt(annualizationFactor), nil
}
