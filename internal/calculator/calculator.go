package calculator

import (
	"errors"

	"BTSTRadar/internal/model"
)

// ErrInsufficientData marks an indicator whose lookback is longer than
// the available history. Callers skip the field rather than fail.
var ErrInsufficientData = errors.New("insufficient data")

func extractCloses(bars []model.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close.InexactFloat64()
	}
	return closes
}

func extractHighs(bars []model.Bar) []float64 {
	highs := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High.InexactFloat64()
	}
	return highs
}

func extractLows(bars []model.Bar) []float64 {
	lows := make([]float64, len(bars))
	for i, b := range bars {
		lows[i] = b.Low.InexactFloat64()
	}
	return lows
}
