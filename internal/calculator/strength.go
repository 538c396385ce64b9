package calculator

import (
	"github.com/shopspring/decimal"

	"BTSTRadar/internal/model"
)

// StrengthResult carries the custom price/volume strength pair used by
// the end-of-day scorer.
type StrengthResult struct {
	Price  decimal.Decimal
	Volume decimal.Decimal
}

// CalculateStrength scores the latest bar: price strength combines the
// close-over-close change with where the close sits in the day's range
// (change%*100 + bodyRatio*50), volume strength is the latest volume
// against the window average as a percentage. 2 decimal places.
func CalculateStrength(bars []model.Bar) (StrengthResult, error) {
	if len(bars) < 2 {
		return StrengthResult{}, ErrInsufficientData
	}
	latest := bars[len(bars)-1]
	previous := bars[len(bars)-2]

	priceChange := 0.0
	if !previous.Close.IsZero() {
		priceChange = latest.Close.Sub(previous.Close).DivRound(previous.Close, 4).InexactFloat64()
	}
	dayRange := latest.High.Sub(latest.Low).InexactFloat64()
	body := latest.Close.Sub(latest.Low).InexactFloat64()
	rangeRatio := 0.0
	if dayRange != 0 {
		rangeRatio = body / dayRange
	}

	var totalVolume int64
	for _, b := range bars {
		totalVolume += b.Volume
	}
	avgVolume := float64(totalVolume) / float64(len(bars))
	volumeStrength := 0.0
	if avgVolume != 0 {
		volumeStrength = float64(latest.Volume) / avgVolume * 100
	}

	return StrengthResult{
		Price:  decimal.NewFromFloat(priceChange*100 + rangeRatio*50).Round(2),
		Volume: decimal.NewFromFloat(volumeStrength).Round(2),
	}, nil
}
