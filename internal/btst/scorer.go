// Package btst builds the end-of-day BTST recommendation: it pairs the
// day-1 surge bar with the day-2 daily bar, scores the setup from the
// stored strength indicators, and assigns BUY/HOLD/AVOID with trade
// levels.
package btst

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"BTSTRadar/internal/calculator"
	"BTSTRadar/internal/model"
	"BTSTRadar/internal/provider"
	"BTSTRadar/internal/risk"
	"BTSTRadar/internal/session"
	"BTSTRadar/internal/store"
)

const (
	buyThreshold  = 70
	holdThreshold = 50

	// eodRetailIntensity is the fixed baseline the daily scorer uses.
	// It is a coarser stand-in for the six-proxy intraday composite in
	// the session package; the two are intentionally separate
	// computations.
	eodRetailIntensity = 50.0

	breakoutLookback = 20
)

var (
	dBuyTarget  = decimal.NewFromFloat(1.03)
	dBuyStop    = decimal.NewFromFloat(0.985)
	dHoldEntry  = decimal.NewFromFloat(0.995)
	dHoldTarget = decimal.NewFromFloat(1.02)
	dHoldStop   = decimal.NewFromFloat(0.98)
	dT2Mult     = decimal.NewFromFloat(1.02)

	dPositionSize = decimal.NewFromFloat(0.75)
)

// Scorer derives one Recommendation per (symbol, day-2 date).
type Scorer struct {
	provider   provider.BarProvider
	indicators store.IndicatorStore
	risk       *risk.Engine
}

func NewScorer(p provider.BarProvider, ind store.IndicatorStore, r *risk.Engine) *Scorer {
	return &Scorer{provider: p, indicators: ind, risk: r}
}

func (s *Scorer) dayBar(ctx context.Context, symbol string, date time.Time) (model.Bar, error) {
	bars, err := s.provider.DailyBars(ctx, symbol, date, date)
	if err != nil {
		return model.Bar{}, err
	}
	if len(bars) == 0 {
		return model.Bar{}, fmt.Errorf("%w: no daily bar for %s on %s", session.ErrMissingData, symbol, store.DateKey(date))
	}
	return bars[len(bars)-1], nil
}

// Score analyzes one symbol for day2, given the surge day day1. Missing
// bars skip the symbol with ErrMissingData.
func (s *Scorer) Score(ctx context.Context, symbol string, day1, day2 time.Time) (*model.Recommendation, error) {
	day1Bar, err := s.dayBar(ctx, symbol, day1)
	if err != nil {
		return nil, err
	}
	day2Bar, err := s.dayBar(ctx, symbol, day2)
	if err != nil {
		return nil, err
	}

	rec := &model.Recommendation{Symbol: symbol, Date: day2}
	if err := s.dayOneCharacteristics(ctx, rec, day1Bar, day1); err != nil {
		return nil, err
	}
	s.dayTwoBehavior(rec, day1Bar, day2Bar)
	s.strengthScore(rec, day2)
	scoreRecommendation(rec, day2Bar.Close)
	applyRiskReward(rec)

	assessment := s.risk.Assess(ctx, symbol, day2, &risk.SessionContext{
		GapPercent:      rec.GapPercent,
		ShowsAbsorption: rec.ShowsAbsorption,
	})
	rec.LiquidityRisk = assessment.Liquidity
	rec.GapRisk = assessment.Gap
	return rec, nil
}

func (s *Scorer) dayOneCharacteristics(ctx context.Context, rec *model.Recommendation, day1Bar model.Bar, day1 time.Time) error {
	span := day1Bar.High.Sub(day1Bar.Low)
	if span.Sign() > 0 {
		wick := day1Bar.High.Sub(day1Bar.Close).DivRound(span, 4)
		rec.HadLateSurge = wick.InexactFloat64() < 0.3
	}

	if ind, err := s.indicators.FindIndicators(rec.Symbol, day1); err == nil {
		rec.LateSessionVolumeRatio = ind.VolumeRatio
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("day-1 indicators: %w", err)
	}

	from := day1.AddDate(0, 0, -60)
	to := day1.AddDate(0, 0, -1)
	history, err := s.provider.DailyBars(ctx, rec.Symbol, from, to)
	if err != nil {
		return fmt.Errorf("breakout history: %w", err)
	}
	if len(history) > breakoutLookback {
		history = history[len(history)-breakoutLookback:]
	}
	rec.BreakoutLevel = day1Bar.High
	if highest, err := calculator.HighestHigh(history, len(history)); err == nil {
		rec.BreakoutLevel = highest
	}
	return nil
}

func (s *Scorer) dayTwoBehavior(rec *model.Recommendation, day1Bar, day2Bar model.Bar) {
	gap := 0.0
	if !day1Bar.Close.IsZero() {
		gap = day2Bar.Open.Sub(day1Bar.Close).DivRound(day1Bar.Close, 4).InexactFloat64() * 100
	}
	rec.GapPercent = gap

	// A shallow negative gap bought back above the open is absorption.
	rec.ShowsAbsorption = gap < 0 && gap > -1.5 && day2Bar.Close.Cmp(day2Bar.Open) > 0
	rec.PullbackDepth = math.Abs(gap)
	rec.SupplyExhausted = rec.ShowsAbsorption

	if day2Bar.Trades > 0 {
		rec.AvgTradeSize = float64(day2Bar.Volume) / float64(day2Bar.Trades)
	}
	rec.RetailIntensity = eodRetailIntensity
	rec.VWAPReclaimed = true
}

func (s *Scorer) strengthScore(rec *model.Recommendation, day2 time.Time) {
	ind, err := s.indicators.FindIndicators(rec.Symbol, day2)
	if err != nil {
		return
	}
	strength := 0.0
	if ind.PriceStrength.Valid {
		strength += ind.PriceStrength.Decimal.InexactFloat64()
	}
	if ind.VolumeStrength.Valid {
		strength += ind.VolumeStrength.Decimal.InexactFloat64()
	}
	rec.StrengthScore = strength
}

func scoreRecommendation(rec *model.Recommendation, close decimal.Decimal) {
	score := rec.StrengthScore
	if rec.ShowsAbsorption {
		score += 15
	}
	if rec.SupplyExhausted {
		score += 10
	}
	rec.Confidence = score

	switch {
	case score >= buyThreshold:
		rec.Action = model.ActionBuy
		rec.EntryPrice = model.ND(close.Round(2))
		rec.TargetPrice = model.ND(close.Mul(dBuyTarget).Round(2))
		rec.StopLoss = model.ND(close.Mul(dBuyStop).Round(2))
	case score >= holdThreshold:
		rec.Action = model.ActionHold
		rec.EntryPrice = model.ND(close.Mul(dHoldEntry).Round(2))
		rec.TargetPrice = model.ND(close.Mul(dHoldTarget).Round(2))
		rec.StopLoss = model.ND(close.Mul(dHoldStop).Round(2))
	default:
		rec.Action = model.ActionAvoid
	}
}

func applyRiskReward(rec *model.Recommendation) {
	if !rec.EntryPrice.Valid || !rec.TargetPrice.Valid || !rec.StopLoss.Valid {
		return
	}
	rec.PositionSizePercent = model.ND(dPositionSize)
	entry := rec.EntryPrice.Decimal
	target := rec.TargetPrice.Decimal
	stop := rec.StopLoss.Decimal
	rec.RiskRewardT1 = riskReward(entry, target, stop)
	rec.RiskRewardT2 = riskReward(entry, target.Mul(dT2Mult), stop)
}

// riskReward is reward over risk, unset when the stop sits at or above
// the entry.
func riskReward(entry, target, stop decimal.Decimal) decimal.NullDecimal {
	risk := entry.Sub(stop)
	if risk.Sign() <= 0 {
		return decimal.NullDecimal{}
	}
	return model.ND(target.Sub(entry).DivRound(risk, 2))
}
