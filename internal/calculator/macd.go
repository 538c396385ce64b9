package calculator

import (
	"fmt"

	"BTSTRadar/internal/model"
)

// MACDResult holds the latest MACD(12,26,9) values and the crossover
// classification of the final histogram point.
type MACDResult struct {
	Line      float64
	Signal    float64
	Histogram float64
	Crossover model.MACDCrossover
}

// CalculateMACD computes MACD(fast,slow,signal): EMA(fast)-EMA(slow) as
// the MACD line, an EMA(signal) of that line, and their difference as
// the histogram. Crossover is bullish when the histogram crosses from
// <=0 to >0 at the latest point, bearish for the inverse, else neutral.
// Requires at least slow+signal-1 values.
func CalculateMACD(closes []float64, fast, slow, signal int) (MACDResult, error) {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return MACDResult{}, fmt.Errorf("invalid macd periods (%d,%d,%d)", fast, slow, signal)
	}
	if len(closes) < slow+signal-1 {
		return MACDResult{}, fmt.Errorf("macd(%d,%d,%d): %w", fast, slow, signal, ErrInsufficientData)
	}

	fastSeries, err := CalculateEMASeries(closes, fast)
	if err != nil {
		return MACDResult{}, err
	}
	slowSeries, err := CalculateEMASeries(closes, slow)
	if err != nil {
		return MACDResult{}, err
	}

	// Align both series at the slow EMA's first defined index.
	offset := slow - fast
	line := make([]float64, len(slowSeries))
	for i := range slowSeries {
		line[i] = fastSeries[i+offset] - slowSeries[i]
	}

	signalSeries, err := CalculateEMASeries(line, signal)
	if err != nil {
		return MACDResult{}, err
	}

	last := len(signalSeries) - 1
	lineTail := line[len(line)-len(signalSeries):]
	hist := lineTail[last] - signalSeries[last]

	crossover := model.CrossoverNeutral
	if last > 0 {
		prevHist := lineTail[last-1] - signalSeries[last-1]
		if hist > 0 && prevHist <= 0 {
			crossover = model.CrossoverBullish
		} else if hist < 0 && prevHist >= 0 {
			crossover = model.CrossoverBearish
		}
	}

	return MACDResult{
		Line:      lineTail[last],
		Signal:    signalSeries[last],
		Histogram: hist,
		Crossover: crossover,
	}, nil
}
