package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MACDCrossover classifies the latest MACD histogram transition.
type MACDCrossover string

const (
	CrossoverBullish MACDCrossover = "bullish"
	CrossoverBearish MACDCrossover = "bearish"
	CrossoverNeutral MACDCrossover = "neutral"
)

// IndicatorSet holds all technical indicators derived for one symbol as
// of one date. Fields are NullDecimal because each indicator needs its
// own lookback; an indicator whose lookback is not met stays unset
// rather than failing the whole set. Recomputation for the same
// (symbol, date) overwrites the stored record.
type IndicatorSet struct {
	Symbol string
	Date   time.Time

	RSI14 decimal.NullDecimal
	EMA9  decimal.NullDecimal
	EMA21 decimal.NullDecimal
	SMA20 decimal.NullDecimal
	ATR14 decimal.NullDecimal

	MACD          decimal.NullDecimal
	MACDSignal    decimal.NullDecimal
	MACDHistogram decimal.NullDecimal
	MACDCrossover MACDCrossover

	BollingerUpper decimal.NullDecimal
	BollingerLower decimal.NullDecimal
	BollingerWidth decimal.NullDecimal

	VWAP        decimal.NullDecimal
	OBV         int64
	OBVEMA      decimal.NullDecimal
	VolumeSMA20 int64
	// VolumeRatio is current volume over its 20-period SMA as a
	// percentage: 100 means at par, 150 means 1.5x average.
	VolumeRatio decimal.NullDecimal
	PVT         decimal.NullDecimal
	VolumeROC   decimal.NullDecimal

	Highest20   decimal.NullDecimal
	Lowest20    decimal.NullDecimal
	Pivot       decimal.NullDecimal
	Resistance1 decimal.NullDecimal
	Resistance2 decimal.NullDecimal
	Support1    decimal.NullDecimal
	Support2    decimal.NullDecimal

	PriceStrength  decimal.NullDecimal
	VolumeStrength decimal.NullDecimal
}

// ND wraps a decimal as a valid NullDecimal.
func ND(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
