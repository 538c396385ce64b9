package calculator

import (
	"fmt"
	"math"
)

// CalculateATR computes the Wilder-averaged true range over the given
// period. True range = max(high-low, |high-prevClose|, |low-prevClose|).
// Requires at least period+1 bars.
func CalculateATR(highs, lows, closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	n := len(closes)
	if n < period+1 || len(highs) != n || len(lows) != n {
		return 0, fmt.Errorf("atr(%d): %w", period, ErrInsufficientData)
	}

	trueRange := func(i int) float64 {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		return math.Max(hl, math.Max(hc, lc))
	}

	// Seed with the plain average of the first `period` true ranges.
	var atr float64
	for i := 1; i <= period; i++ {
		atr += trueRange(i)
	}
	atr /= float64(period)

	for i := period + 1; i < n; i++ {
		atr = (atr*float64(period-1) + trueRange(i)) / float64(period)
	}
	return atr, nil
}
