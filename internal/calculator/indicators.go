package calculator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"BTSTRadar/internal/model"
)

// MinBars is the shortest history Compute accepts. Shorter series
// cannot produce any of the windowed indicators.
const MinBars = 20

// Compute derives the full indicator set for one symbol as of the last
// bar. Bars must be ordered oldest to newest and carry only timestamps
// at or before asOf. Indicators whose individual lookback is not met
// are left unset; only a history shorter than MinBars is an error.
func Compute(symbol string, asOf time.Time, bars []model.Bar) (*model.IndicatorSet, error) {
	if len(bars) < MinBars {
		return nil, fmt.Errorf("compute indicators for %s: %w", symbol, ErrInsufficientData)
	}

	closes := extractCloses(bars)
	highs := extractHighs(bars)
	lows := extractLows(bars)
	latest := bars[len(bars)-1]

	set := &model.IndicatorSet{
		Symbol:        symbol,
		Date:          asOf,
		MACDCrossover: model.CrossoverNeutral,
	}

	// Rounding happens here, at the point of calculation: RSI and the
	// volume ratios at 2 places, price-denominated values at 4.
	if rsi, err := CalculateRSI(closes, 14); err == nil {
		set.RSI14 = model.ND(decimal.NewFromFloat(rsi).Round(2))
	}
	if ema, err := CalculateEMA(closes, 9); err == nil {
		set.EMA9 = model.ND(decimal.NewFromFloat(ema).Round(4))
	}
	if ema, err := CalculateEMA(closes, 21); err == nil {
		set.EMA21 = model.ND(decimal.NewFromFloat(ema).Round(4))
	}
	if sma, err := CalculateSMA(closes, 20); err == nil {
		set.SMA20 = model.ND(decimal.NewFromFloat(sma).Round(4))
	}
	if atr, err := CalculateATR(highs, lows, closes, 14); err == nil {
		set.ATR14 = model.ND(decimal.NewFromFloat(atr).Round(4))
	}

	if macd, err := CalculateMACD(closes, 12, 26, 9); err == nil {
		set.MACD = model.ND(decimal.NewFromFloat(macd.Line).Round(4))
		set.MACDSignal = model.ND(decimal.NewFromFloat(macd.Signal).Round(4))
		set.MACDHistogram = model.ND(decimal.NewFromFloat(macd.Histogram).Round(4))
		set.MACDCrossover = macd.Crossover
	}

	if bb, err := CalculateBollinger(closes, 20, 2.0); err == nil {
		set.BollingerUpper = model.ND(decimal.NewFromFloat(bb.Upper).Round(4))
		set.BollingerLower = model.ND(decimal.NewFromFloat(bb.Lower).Round(4))
		set.BollingerWidth = model.ND(decimal.NewFromFloat(bb.Width).Round(4))
	}

	set.VWAP = model.ND(CalculateVWAP(bars, len(bars)-1, false))
	obv := CalculateOBVSeries(bars)
	set.OBV = obv[len(obv)-1]
	if obvEMA, err := CalculateOBVEMA(obv, 10); err == nil {
		set.OBVEMA = model.ND(obvEMA)
	}
	if volSMA, err := CalculateVolumeSMA(bars, 20); err == nil {
		set.VolumeSMA20 = volSMA
		set.VolumeRatio = model.ND(CalculateVolumeRatio(latest.Volume, volSMA))
	}
	set.PVT = model.ND(CalculatePVT(bars))
	if len(bars) >= 2 {
		set.VolumeROC = model.ND(CalculateVolumeROC(latest.Volume, bars[len(bars)-2].Volume))
	}

	if levels, err := CalculateLevels(bars, 20); err == nil {
		set.Highest20 = model.ND(levels.Highest)
		set.Lowest20 = model.ND(levels.Lowest)
		set.Pivot = model.ND(levels.Pivot)
		set.Resistance1 = model.ND(levels.Resistance1)
		set.Resistance2 = model.ND(levels.Resistance2)
		set.Support1 = model.ND(levels.Support1)
		set.Support2 = model.ND(levels.Support2)
	}

	if strength, err := CalculateStrength(bars); err == nil {
		set.PriceStrength = model.ND(strength.Price)
		set.VolumeStrength = model.ND(strength.Volume)
	}

	return set, nil
}
