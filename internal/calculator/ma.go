package calculator

import "fmt"

// CalculateSMA computes the simple moving average of the last `period`
// values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period {
		return 0, fmt.Errorf("sma(%d): %w", period, ErrInsufficientData)
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// CalculateEMASeries computes the exponential moving average of the
// whole series, seeded with the SMA of the first `period` values. The
// returned slice has one entry per input from index period-1 onward.
func CalculateEMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(values) < period {
		return nil, fmt.Errorf("ema(%d): %w", period, ErrInsufficientData)
	}
	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	seed /= float64(period)

	k := 2.0 / float64(period+1)
	out := make([]float64, 0, len(values)-period+1)
	out = append(out, seed)
	ema := seed
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*k + ema
		out = append(out, ema)
	}
	return out, nil
}

// CalculateEMA returns the latest EMA value for the series.
func CalculateEMA(values []float64, period int) (float64, error) {
	series, err := CalculateEMASeries(values, period)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}
