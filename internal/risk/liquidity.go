package risk

import (
	"context"
	"log"
	"strings"
	"time"

	"BTSTRadar/internal/model"
)

const (
	liquidityHistory  = 10
	volumeAvgSessions = 5

	turnoverHigh = 100_000_000
	turnoverMid  = 50_000_000
	turnoverLow  = 20_000_000
)

// LiquidityRisk buckets how easily the position could be exited the
// next morning, from a 0-11 score over today's volume, turnover,
// intraday spread, and turnover ratio versus the 10-session average.
// Fewer than 5 historical sessions is reported as HIGH.
func (e *Engine) LiquidityRisk(ctx context.Context, symbol string, date time.Time) model.LiquidityRisk {
	bars, err := e.recentBars(ctx, symbol, date, liquidityHistory)
	if err != nil {
		log.Printf("[ERROR] liquidity risk %s: %v", symbol, err)
		return model.LiquidityRisk{Level: model.RiskHigh, Factors: "Error in liquidity calculation"}
	}
	if len(bars) < volumeAvgSessions {
		return model.LiquidityRisk{Level: model.RiskHigh, Factors: "Insufficient data for liquidity assessment"}
	}

	current := bars[len(bars)-1]

	volWindow := bars[len(bars)-volumeAvgSessions:]
	var volSum int64
	for _, bar := range volWindow {
		volSum += bar.Volume
	}
	avgVolume := float64(volSum) / float64(len(volWindow))

	var turnoverSum int64
	for _, bar := range bars {
		turnoverSum += bar.ValueTraded
	}
	avgTurnover := float64(turnoverSum) / float64(len(bars))

	spread := spreadPercent(current)
	turnoverRatio := 0.0
	if avgTurnover != 0 {
		turnoverRatio = float64(current.ValueTraded) / avgTurnover
	}

	score := 0
	switch {
	case float64(current.Volume) > avgVolume*1.5:
		score += 3
	case float64(current.Volume) > avgVolume:
		score += 2
	case float64(current.Volume) > avgVolume*0.5:
		score += 1
	}
	switch {
	case current.ValueTraded > turnoverHigh:
		score += 3
	case current.ValueTraded > turnoverMid:
		score += 2
	case current.ValueTraded > turnoverLow:
		score += 1
	}
	switch {
	case spread < 0.5:
		score += 3
	case spread < 1.0:
		score += 2
	case spread < 2.0:
		score += 1
	}
	switch {
	case turnoverRatio > 0.8 && turnoverRatio < 2.0:
		score += 2
	case turnoverRatio > 0.5:
		score += 1
	}

	level := model.RiskHigh
	switch {
	case score >= 9:
		level = model.RiskLow
	case score >= 6:
		level = model.RiskMedium
	}

	var factors []string
	if float64(current.Volume) > avgVolume {
		factors = append(factors, "Healthy volume")
	}
	if spread < 1.0 {
		factors = append(factors, "Tight spread")
	}
	if turnoverRatio > 1.0 {
		factors = append(factors, "Turnover above average")
	}
	return model.LiquidityRisk{Level: level, Factors: strings.Join(factors, ", ")}
}

// spreadPercent is the day's range over its midprice, as a percentage.
func spreadPercent(bar model.Bar) float64 {
	high := bar.High.InexactFloat64()
	low := bar.Low.InexactFloat64()
	mid := (high + low) / 2
	if mid == 0 {
		return 0
	}
	return (high - low) / mid * 100
}
