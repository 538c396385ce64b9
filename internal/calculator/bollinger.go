package calculator

import (
	"fmt"
	"math"
)

// BollingerResult holds the band values for the latest point.
type BollingerResult struct {
	Upper  float64
	Middle float64
	Lower  float64
	// Width is (upper-lower)/middle, a normalized band width.
	Width float64
}

// CalculateBollinger computes SMA(period) +/- stddevs standard
// deviations of the last `period` closes.
func CalculateBollinger(closes []float64, period int, stddevs float64) (BollingerResult, error) {
	if len(closes) < period {
		return BollingerResult{}, fmt.Errorf("bollinger(%d): %w", period, ErrInsufficientData)
	}
	middle, err := CalculateSMA(closes, period)
	if err != nil {
		return BollingerResult{}, err
	}

	variance := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - middle
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(period))

	upper := middle + stddevs*sd
	lower := middle - stddevs*sd
	width := 0.0
	if middle != 0 {
		width = (upper - lower) / middle
	}
	return BollingerResult{Upper: upper, Middle: middle, Lower: lower, Width: width}, nil
}
