package btst

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"BTSTRadar/internal/model"
	"BTSTRadar/internal/provider"
	"BTSTRadar/internal/risk"
	"BTSTRadar/internal/store"
)

var (
	day2 = time.Date(2026, 3, 24, 0, 0, 0, 0, time.UTC)
	day1 = time.Date(2026, 3, 23, 0, 0, 0, 0, time.UTC)
)

type fakeIndicators struct {
	sets map[string]*model.IndicatorSet
}

func newFakeIndicators() *fakeIndicators {
	return &fakeIndicators{sets: make(map[string]*model.IndicatorSet)}
}

func (f *fakeIndicators) SaveIndicators(set *model.IndicatorSet) error {
	f.sets[set.Symbol+"|"+store.DateKey(set.Date)] = set
	return nil
}

func (f *fakeIndicators) FindIndicators(symbol string, date time.Time) (*model.IndicatorSet, error) {
	set, ok := f.sets[symbol+"|"+store.DateKey(date)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return set, nil
}

func daily(ts time.Time, open, high, low, close float64, volume int64) model.Bar {
	return model.Bar{
		Symbol:      "TEST",
		Timestamp:   ts,
		Open:        decimal.NewFromFloat(open),
		High:        decimal.NewFromFloat(high),
		Low:         decimal.NewFromFloat(low),
		Close:       decimal.NewFromFloat(close),
		Volume:      volume,
		Trades:      500,
		ValueTraded: 120_000_000,
	}
}

// seedHistory loads 22 quiet sessions ending on day1, so the breakout
// lookback and both risk overlays have data to work with.
func seedHistory(mock *provider.MockProvider, day1Close float64) {
	for i := 21; i >= 1; i-- {
		mock.AddDaily("TEST", daily(day1.AddDate(0, 0, -i), 100, 104, 99, 100, 1_000_000))
	}
	mock.AddDaily("TEST", daily(day1, 100, day1Close+1, 99, day1Close, 1_800_000))
}

func newTestScorer(mock *provider.MockProvider, ind store.IndicatorStore) *Scorer {
	return NewScorer(mock, ind, risk.NewEngine(mock))
}

func TestScore_BuyRecommendation(t *testing.T) {
	mock := provider.NewMockProvider()
	seedHistory(mock, 107)
	// Shallow negative gap bought back above the open: absorption.
	mock.AddDaily("TEST", daily(day2, 106.1, 108.5, 105.5, 108, 1_500_000))

	ind := newFakeIndicators()
	ind.SaveIndicators(&model.IndicatorSet{
		Symbol: "TEST", Date: day1,
		VolumeRatio: model.ND(decimal.NewFromInt(180)),
	})
	ind.SaveIndicators(&model.IndicatorSet{
		Symbol: "TEST", Date: day2,
		PriceStrength:  model.ND(decimal.NewFromInt(30)),
		VolumeStrength: model.ND(decimal.NewFromInt(20)),
	})

	rec, err := newTestScorer(mock, ind).Score(context.Background(), "TEST", day1, day2)
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	if !rec.HadLateSurge {
		t.Error("day-1 close near the high should flag a late surge")
	}
	if !rec.LateSessionVolumeRatio.Valid || !rec.LateSessionVolumeRatio.Decimal.Equal(decimal.NewFromInt(180)) {
		t.Errorf("expected day-1 volume ratio 180, got %v", rec.LateSessionVolumeRatio)
	}
	if !rec.ShowsAbsorption {
		t.Errorf("expected absorption for gap %.2f with close above open", rec.GapPercent)
	}
	// strength 50 + absorption 15 + exhaustion 10
	if rec.Confidence != 75 {
		t.Errorf("expected confidence 75, got %.1f", rec.Confidence)
	}
	if rec.Action != model.ActionBuy {
		t.Fatalf("expected BUY, got %s", rec.Action)
	}
	if !rec.EntryPrice.Decimal.Equal(decimal.NewFromInt(108)) {
		t.Errorf("BUY entry should be the day-2 close, got %s", rec.EntryPrice.Decimal)
	}
	wantTarget := decimal.NewFromInt(108).Mul(decimal.NewFromFloat(1.03)).Round(2)
	if !rec.TargetPrice.Decimal.Equal(wantTarget) {
		t.Errorf("expected target %s, got %s", wantTarget, rec.TargetPrice.Decimal)
	}
	if !rec.PositionSizePercent.Valid || !rec.PositionSizePercent.Decimal.Equal(decimal.NewFromFloat(0.75)) {
		t.Errorf("expected position size 0.75, got %v", rec.PositionSizePercent)
	}
	if !rec.RiskRewardT1.Valid || !rec.RiskRewardT2.Valid {
		t.Error("expected both risk-reward ratios to be set")
	}
}

func TestScore_HoldWithoutAbsorption(t *testing.T) {
	mock := provider.NewMockProvider()
	seedHistory(mock, 107)
	// Positive gap: no absorption, no exhaustion.
	mock.AddDaily("TEST", daily(day2, 108, 109, 107, 108.5, 1_200_000))

	ind := newFakeIndicators()
	ind.SaveIndicators(&model.IndicatorSet{
		Symbol: "TEST", Date: day2,
		PriceStrength:  model.ND(decimal.NewFromInt(35)),
		VolumeStrength: model.ND(decimal.NewFromInt(15)),
	})

	rec, err := newTestScorer(mock, ind).Score(context.Background(), "TEST", day1, day2)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if rec.ShowsAbsorption {
		t.Error("positive gap must not count as absorption")
	}
	if rec.Confidence != 50 {
		t.Errorf("expected confidence 50, got %.1f", rec.Confidence)
	}
	if rec.Action != model.ActionHold {
		t.Fatalf("expected HOLD, got %s", rec.Action)
	}
	wantEntry := decimal.NewFromFloat(108.5).Mul(decimal.NewFromFloat(0.995)).Round(2)
	if !rec.EntryPrice.Decimal.Equal(wantEntry) {
		t.Errorf("HOLD entry should be a pullback below the close, got %s", rec.EntryPrice.Decimal)
	}
}

func TestScore_AvoidWithoutSignals(t *testing.T) {
	mock := provider.NewMockProvider()
	seedHistory(mock, 107)
	mock.AddDaily("TEST", daily(day2, 108, 109, 107, 108.5, 1_200_000))

	rec, err := newTestScorer(mock, newFakeIndicators()).Score(context.Background(), "TEST", day1, day2)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if rec.Action != model.ActionAvoid {
		t.Fatalf("expected AVOID with no strength data, got %s", rec.Action)
	}
	if rec.EntryPrice.Valid || rec.RiskRewardT1.Valid {
		t.Error("AVOID must not carry trade levels")
	}
}

func TestScore_MissingDayTwoBar(t *testing.T) {
	mock := provider.NewMockProvider()
	seedHistory(mock, 107)

	if _, err := newTestScorer(mock, newFakeIndicators()).Score(context.Background(), "TEST", day1, day2); err == nil {
		t.Fatal("expected an error when the day-2 bar is missing")
	}
}

func TestRiskReward(t *testing.T) {
	rr := riskReward(decimal.NewFromInt(100), decimal.NewFromInt(103), decimal.NewFromFloat(98.5))
	if !rr.Valid {
		t.Fatal("expected a valid ratio")
	}
	if !rr.Decimal.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected risk-reward 2.0, got %s", rr.Decimal)
	}

	inverted := riskReward(decimal.NewFromInt(100), decimal.NewFromInt(103), decimal.NewFromInt(101))
	if inverted.Valid {
		t.Error("stop above entry must leave the ratio unset")
	}
}
