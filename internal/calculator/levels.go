package calculator

import (
	"github.com/shopspring/decimal"

	"BTSTRadar/internal/model"
)

// Levels holds support/resistance derived from a trailing window.
type Levels struct {
	Highest     decimal.Decimal
	Lowest      decimal.Decimal
	Pivot       decimal.Decimal
	Resistance1 decimal.Decimal
	Resistance2 decimal.Decimal
	Support1    decimal.Decimal
	Support2    decimal.Decimal
}

var (
	fib382 = decimal.NewFromFloat(0.382)
	fib618 = decimal.NewFromFloat(0.618)
)

// CalculateLevels builds pivot-based support/resistance from the last
// `period` bars: pivot = (highestHigh+lowestLow)/2, then the range
// scaled by the 0.382/0.618 retracement ratios. 4 decimal places.
func CalculateLevels(bars []model.Bar, period int) (Levels, error) {
	if len(bars) < period || period <= 0 {
		return Levels{}, ErrInsufficientData
	}
	window := bars[len(bars)-period:]
	highest := window[0].High
	lowest := window[0].Low
	for _, b := range window[1:] {
		if b.High.GreaterThan(highest) {
			highest = b.High
		}
		if b.Low.LessThan(lowest) {
			lowest = b.Low
		}
	}

	span := highest.Sub(lowest)
	pivot := highest.Add(lowest).DivRound(decimal.NewFromInt(2), 4)
	return Levels{
		Highest:     highest,
		Lowest:      lowest,
		Pivot:       pivot,
		Resistance1: pivot.Add(span.Mul(fib382)).Round(4),
		Resistance2: pivot.Add(span.Mul(fib618)).Round(4),
		Support1:    pivot.Sub(span.Mul(fib382)).Round(4),
		Support2:    pivot.Sub(span.Mul(fib618)).Round(4),
	}, nil
}

// HighestHigh returns the maximum high over the last `period` bars.
func HighestHigh(bars []model.Bar, period int) (decimal.Decimal, error) {
	if len(bars) < 1 || period <= 0 {
		return decimal.Zero, ErrInsufficientData
	}
	start := len(bars) - period
	if start < 0 {
		start = 0
	}
	highest := bars[start].High
	for _, b := range bars[start+1:] {
		if b.High.GreaterThan(highest) {
			highest = b.High
		}
	}
	return highest, nil
}
