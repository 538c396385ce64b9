// Package risk scores the liquidity and overnight-gap overlays that
// gate a BTST recommendation. Assessments are computed on demand from
// recent daily history and never cached.
package risk

import (
	"context"
	"time"

	"BTSTRadar/internal/model"
	"BTSTRadar/internal/provider"
)

// SessionContext carries session-analysis facts that raise the gap
// risk: an unresolved large gap and absent absorption.
type SessionContext struct {
	GapPercent      float64
	ShowsAbsorption bool
}

// Engine computes both risk overlays for a symbol.
type Engine struct {
	provider provider.BarProvider
}

func NewEngine(p provider.BarProvider) *Engine {
	return &Engine{provider: p}
}

// Assess computes both overlays. sess may be nil when no session
// analysis exists for the day.
func (e *Engine) Assess(ctx context.Context, symbol string, date time.Time, sess *SessionContext) model.RiskAssessment {
	return model.RiskAssessment{
		Symbol:    symbol,
		Date:      date,
		Liquidity: e.LiquidityRisk(ctx, symbol, date),
		Gap:       e.GapRisk(ctx, symbol, date, sess),
	}
}

// recentBars fetches up to n daily bars ending at `to` inclusive,
// ordered oldest to newest.
func (e *Engine) recentBars(ctx context.Context, symbol string, to time.Time, n int) ([]model.Bar, error) {
	from := to.AddDate(0, 0, -n*2)
	bars, err := e.provider.DailyBars(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}
