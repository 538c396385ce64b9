package risk

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"BTSTRadar/internal/model"
	"BTSTRadar/internal/provider"
)

var testDate = time.Date(2026, 3, 24, 0, 0, 0, 0, time.UTC)

func liquidBar(ts time.Time, price float64, volume, valueTraded int64) model.Bar {
	return model.Bar{
		Symbol:      "TEST",
		Timestamp:   ts,
		Open:        decimal.NewFromFloat(price),
		High:        decimal.NewFromFloat(price * 1.002),
		Low:         decimal.NewFromFloat(price * 0.998),
		Close:       decimal.NewFromFloat(price),
		Volume:      volume,
		ValueTraded: valueTraded,
	}
}

func TestLiquidityRisk_InsufficientHistory(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.AddDaily("TEST", liquidBar(testDate, 100, 1_000_000, 100_000_000))

	engine := NewEngine(mock)
	result := engine.LiquidityRisk(context.Background(), "TEST", testDate)
	if result.Level != model.RiskHigh {
		t.Errorf("expected HIGH with under 5 sessions, got %s", result.Level)
	}
	if result.Factors != "Insufficient data for liquidity assessment" {
		t.Errorf("unexpected factors: %q", result.Factors)
	}
}

func TestLiquidityRisk_DeepMarket(t *testing.T) {
	mock := provider.NewMockProvider()
	// Nine quiet sessions, then a heavy final day: volume 2x average,
	// turnover above 100M, tight spread, turnover ratio in band.
	for i := 0; i < 9; i++ {
		mock.AddDaily("TEST", liquidBar(testDate.AddDate(0, 0, i-9), 100, 1_000_000, 100_000_000))
	}
	mock.AddDaily("TEST", liquidBar(testDate, 100, 2_500_000, 150_000_000))

	engine := NewEngine(mock)
	result := engine.LiquidityRisk(context.Background(), "TEST", testDate)
	if result.Level != model.RiskLow {
		t.Errorf("expected LOW for a deep liquid market, got %s (%s)", result.Level, result.Factors)
	}
}

func TestGapRisk_QuietHistory(t *testing.T) {
	mock := provider.NewMockProvider()
	// Ten gapless sessions: every open matches the prior close.
	for i := 0; i < 10; i++ {
		mock.AddDaily("TEST", liquidBar(testDate.AddDate(0, 0, i-10), 100, 1_000_000, 100_000_000))
	}
	mock.AddDaily("TEST", liquidBar(testDate, 100, 1_000_000, 100_000_000))

	engine := NewEngine(mock)
	result := engine.GapRisk(context.Background(), "TEST", testDate, nil)
	if result.Level != model.RiskLow {
		t.Errorf("expected LOW for gapless history, got %s (%s)", result.Level, result.Factors)
	}
}

func TestGapRisk_InsufficientHistory(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.AddDaily("TEST", liquidBar(testDate, 100, 1_000_000, 100_000_000))

	engine := NewEngine(mock)
	result := engine.GapRisk(context.Background(), "TEST", testDate, nil)
	if result.Level != model.RiskMedium {
		t.Errorf("expected MEDIUM with insufficient history, got %s", result.Level)
	}
}

func TestGapRisk_SessionSurcharge(t *testing.T) {
	mock := provider.NewMockProvider()
	for i := 0; i < 10; i++ {
		mock.AddDaily("TEST", liquidBar(testDate.AddDate(0, 0, i-10), 100, 1_000_000, 100_000_000))
	}
	// A 3% current-day range scores one point on its own; the session
	// surcharge then pushes the total past the LOW boundary.
	wide := liquidBar(testDate, 100, 1_000_000, 100_000_000)
	wide.High = decimal.NewFromFloat(102)
	wide.Low = decimal.NewFromFloat(99)
	mock.AddDaily("TEST", wide)

	engine := NewEngine(mock)
	quiet := engine.GapRisk(context.Background(), "TEST", testDate, nil)
	flagged := engine.GapRisk(context.Background(), "TEST", testDate, &SessionContext{
		GapPercent:      -2.0,
		ShowsAbsorption: false,
	})
	if quiet.Level != model.RiskLow {
		t.Fatalf("baseline should be LOW, got %s", quiet.Level)
	}
	if flagged.Level == model.RiskLow {
		t.Errorf("unresolved large gap without absorption should raise the level, got %s", flagged.Level)
	}
}
