package session

import (
	"math"

	"BTSTRadar/internal/model"
)

// RetailIntensity estimates how much of the session's activity looks
// retail-driven, from six behavioral proxies over the aggregated
// session bars. High values mean churny, emotional trading; low values
// mean deliberate accumulation. Each proxy is in [0,100] and defaults
// to 50 when its own minimum bar count is not met.
func RetailIntensity(bars []model.Bar) model.RetailIntensityMetrics {
	m := model.RetailIntensityMetrics{
		Volatility:         volatilityProxy(bars),
		VolumeClustering:   volumeClusteringProxy(bars),
		EstimatedDelivery:  estimatedDeliveryProxy(bars),
		PriceRejection:     priceRejectionProxy(bars),
		VolumeCoherence:    volumeCoherenceProxy(bars),
		MomentumExhaustion: momentumExhaustionProxy(bars),
	}
	composite := m.Volatility*0.25 +
		m.VolumeClustering*0.20 +
		(100-m.EstimatedDelivery)*0.20 +
		m.PriceRejection*0.15 +
		m.VolumeCoherence*0.10 +
		m.MomentumExhaustion*0.10
	m.Composite = clamp(composite, 0, 100)
	return m
}

// volatilityProxy combines average bar-range percentage with the rate
// of direction flips between consecutive bars.
func volatilityProxy(bars []model.Bar) float64 {
	if len(bars) < 2 {
		return 50
	}
	var totalVolatility float64
	reversals := 0
	for i := 1; i < len(bars); i++ {
		prev, cur := bars[i-1], bars[i]
		high := cur.High.InexactFloat64()
		low := cur.Low.InexactFloat64()
		if mid := (high + low) / 2; mid != 0 {
			totalVolatility += math.Abs(high-low) / mid * 100
		}
		prevBullish := prev.Close.Cmp(prev.Open) > 0
		curBullish := cur.Close.Cmp(cur.Open) > 0
		if prevBullish != curBullish {
			reversals++
		}
	}
	avgVolatility := totalVolatility / float64(len(bars))
	reversalRate := float64(reversals) / float64(len(bars)) * 100
	return math.Min(100, avgVolatility*20+reversalRate*30)
}

// volumeClusteringProxy measures how much volume piles up at the
// session extremes (open and close hours) plus the rate of volume
// spikes above 2.5x the average bar.
func volumeClusteringProxy(bars []model.Bar) float64 {
	if len(bars) == 0 {
		return 50
	}
	var opening, middle, closing, total int64
	for _, bar := range bars {
		hour, min := bar.Timestamp.Hour(), bar.Timestamp.Minute()
		switch {
		case hour < 10:
			opening += bar.Volume
		case hour < 14 || (hour == 14 && min == 0):
			middle += bar.Volume
		default:
			closing += bar.Volume
		}
		total += bar.Volume
	}
	if total == 0 {
		return 50
	}
	extremes := float64(opening+closing) / float64(total) * 100

	avgVolume := float64(total) / float64(len(bars))
	spikes := 0
	for _, bar := range bars {
		if float64(bar.Volume) > avgVolume*2.5 {
			spikes++
		}
	}
	spikeRate := float64(spikes) / float64(len(bars)) * 100
	return math.Min(100, extremes+spikeRate*20)
}

// estimatedDeliveryProxy is the inverse of price churn: a session that
// travels far in total range but goes nowhere net is mostly intraday
// churn, not delivery-backed buying.
func estimatedDeliveryProxy(bars []model.Bar) float64 {
	if len(bars) == 0 {
		return 50
	}
	first, last := bars[0], bars[len(bars)-1]
	netChange := math.Abs(last.Close.InexactFloat64() - first.Open.InexactFloat64())
	var totalRange float64
	for _, bar := range bars {
		totalRange += bar.High.InexactFloat64() - bar.Low.InexactFloat64()
	}
	churn := 1.0
	if netChange != 0 {
		churn = totalRange / netChange
	}
	return clamp(60-churn*5, 10, 90)
}

// priceRejectionProxy counts wicks through key levels (session open and
// the round numbers bracketing the last close) without follow-through.
func priceRejectionProxy(bars []model.Bar) float64 {
	if len(bars) < 5 {
		return 50
	}
	levels := keyLevels(bars)
	rejections := 0
	for _, bar := range bars {
		high := bar.High.InexactFloat64()
		low := bar.Low.InexactFloat64()
		close := bar.Close.InexactFloat64()
		for _, level := range levels {
			if level == 0 {
				continue
			}
			testedAbove := high >= level && close < level*0.999
			testedBelow := low <= level && close > level*1.001
			if testedAbove || testedBelow {
				rejections++
			}
		}
	}
	rate := float64(rejections) / float64(len(bars)) * 100
	return math.Min(100, rate*10)
}

func keyLevels(bars []model.Bar) []float64 {
	open := bars[0].Open.InexactFloat64()
	current := bars[len(bars)-1].Close.InexactFloat64()
	return []float64{
		open,
		math.Floor(current/10) * 10,
		math.Ceil(current/10) * 10,
	}
}

// volumeCoherenceProxy counts bars where volume and price movement
// disagree: heavy volume going nowhere, or big moves on thin volume.
func volumeCoherenceProxy(bars []model.Bar) float64 {
	if len(bars) < 2 {
		return 50
	}
	var total int64
	for _, bar := range bars {
		total += bar.Volume
	}
	avgVolume := float64(total) / float64(len(bars))

	incoherent := 0
	for _, bar := range bars {
		open := bar.Open.InexactFloat64()
		move := 0.0
		if open != 0 {
			move = math.Abs((bar.Close.InexactFloat64() - open) / open * 100)
		}
		volumeRatio := 0.0
		if avgVolume != 0 {
			volumeRatio = float64(bar.Volume) / avgVolume
		}
		if (volumeRatio > 1.5 && move < 0.3) || (volumeRatio < 0.5 && move > 1) {
			incoherent++
		}
	}
	rate := float64(incoherent) / float64(len(bars)) * 100
	return math.Min(100, rate*3)
}

// momentumExhaustionProxy counts 3-bar directional runs that reverse
// immediately on the next bar, in either direction.
func momentumExhaustionProxy(bars []model.Bar) float64 {
	if len(bars) < 4 {
		return 50
	}
	exhaustion := 0
	for i := 3; i < len(bars); i++ {
		c3 := bars[i-3].Close
		c2 := bars[i-2].Close
		c1 := bars[i-1].Close
		c0 := bars[i].Close
		upRun := c2.Cmp(c3) > 0 && c1.Cmp(c2) > 0
		if upRun && c0.Cmp(c1) < 0 {
			exhaustion++
		}
		downRun := c2.Cmp(c3) < 0 && c1.Cmp(c2) < 0
		if downRun && c0.Cmp(c1) > 0 {
			exhaustion++
		}
	}
	rate := float64(exhaustion) / float64(len(bars)) * 100
	return math.Min(100, rate*5)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
