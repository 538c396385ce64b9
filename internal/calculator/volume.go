package calculator

import (
	"github.com/shopspring/decimal"

	"BTSTRadar/internal/model"
)

// CalculateVWAP computes cumulative typical-price-times-volume over
// cumulative volume up to and including `index`. With resetDaily the
// accumulation restarts at the first bar of the latest calendar date,
// which is the session VWAP for intraday series. Returns zero when
// cumulative volume is zero. Rounded to 4 decimal places.
func CalculateVWAP(bars []model.Bar, index int, resetDaily bool) decimal.Decimal {
	if index < 0 || index >= len(bars) {
		return decimal.Zero
	}
	start := 0
	if resetDaily && index > 0 {
		current := bars[index].Date()
		for i := index; i >= 0; i-- {
			if !bars[i].Date().Equal(current) {
				start = i + 1
				break
			}
		}
	}

	cumulativeTPV := decimal.Zero
	var cumulativeVolume int64
	for i := start; i <= index; i++ {
		vol := decimal.NewFromInt(bars[i].Volume)
		cumulativeTPV = cumulativeTPV.Add(bars[i].TypicalPrice().Mul(vol))
		cumulativeVolume += bars[i].Volume
	}
	if cumulativeVolume == 0 {
		return decimal.Zero
	}
	return cumulativeTPV.DivRound(decimal.NewFromInt(cumulativeVolume), 4)
}

// CalculateOBVSeries computes the on-balance volume series: add volume
// when close rises, subtract when it falls, hold on a tie. The first
// bar seeds the series with its own volume.
func CalculateOBVSeries(bars []model.Bar) []int64 {
	if len(bars) == 0 {
		return nil
	}
	out := make([]int64, len(bars))
	out[0] = bars[0].Volume
	for i := 1; i < len(bars); i++ {
		switch bars[i].Close.Cmp(bars[i-1].Close) {
		case 1:
			out[i] = out[i-1] + bars[i].Volume
		case -1:
			out[i] = out[i-1] - bars[i].Volume
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// CalculateOBVEMA smooths an OBV series with an EMA of the given
// period, rounded to 2 decimal places.
func CalculateOBVEMA(obv []int64, period int) (decimal.Decimal, error) {
	values := make([]float64, len(obv))
	for i, v := range obv {
		values[i] = float64(v)
	}
	ema, err := CalculateEMA(values, period)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(ema).Round(2), nil
}

// CalculateVolumeSMA averages volume over the trailing `period` bars.
func CalculateVolumeSMA(bars []model.Bar, period int) (int64, error) {
	if len(bars) < period || period <= 0 {
		return 0, ErrInsufficientData
	}
	var sum int64
	for i := len(bars) - period; i < len(bars); i++ {
		sum += bars[i].Volume
	}
	return sum / int64(period), nil
}

// CalculateVolumeRatio returns current volume over its SMA as a
// percentage, 2 decimal places. A zero SMA is treated as at par (100).
func CalculateVolumeRatio(currentVolume, volumeSMA int64) decimal.Decimal {
	if volumeSMA == 0 {
		return decimal.NewFromInt(100)
	}
	return decimal.NewFromInt(currentVolume).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(volumeSMA), 2)
}

// CalculatePVT computes the final price-volume-trend value: cumulative
// ((close-prevClose)/prevClose)*volume, 2 decimal places. A zero
// previous close contributes nothing.
func CalculatePVT(bars []model.Bar) decimal.Decimal {
	pvt := decimal.Zero
	for i := 1; i < len(bars); i++ {
		prevClose := bars[i-1].Close
		if prevClose.IsZero() {
			continue
		}
		changePct := bars[i].Close.Sub(prevClose).DivRound(prevClose, 6)
		pvt = pvt.Add(changePct.Mul(decimal.NewFromInt(bars[i].Volume)))
	}
	return pvt.Round(2)
}

// CalculateVolumeROC returns (currentVolume-prevVolume)/prevVolume as a
// percentage, 2 decimal places, zero when the previous volume is zero.
func CalculateVolumeROC(currentVolume, prevVolume int64) decimal.Decimal {
	if prevVolume == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(currentVolume - prevVolume).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(prevVolume), 2)
}
