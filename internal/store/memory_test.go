package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"BTSTRadar/internal/model"
)

var testDate = time.Date(2026, 3, 24, 0, 0, 0, 0, time.UTC)

func TestMemoryStore_StageRoundTrip(t *testing.T) {
	mem := NewMemoryStore()

	if _, err := mem.FindMorning("TEST", testDate); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	morning := &model.MorningAnalysis{Symbol: "TEST", Date: testDate, PanicSelling: true}
	if err := mem.SaveMorning(morning); err != nil {
		t.Fatalf("save morning: %v", err)
	}
	got, err := mem.FindMorning("TEST", testDate)
	if err != nil {
		t.Fatalf("find morning: %v", err)
	}
	if !got.PanicSelling {
		t.Error("round trip lost the panic flag")
	}

	// Same symbol, different date stays independent.
	if _, err := mem.FindMorning("TEST", testDate.AddDate(0, 0, 1)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for other date, got %v", err)
	}
}

func TestMemoryStore_SaveOverwrites(t *testing.T) {
	mem := NewMemoryStore()
	mem.SaveAfternoon(&model.AfternoonAnalysis{Symbol: "TEST", Date: testDate, WeakHandsScore: 40})
	mem.SaveAfternoon(&model.AfternoonAnalysis{Symbol: "TEST", Date: testDate, WeakHandsScore: 70})

	got, err := mem.FindAfternoon("TEST", testDate)
	if err != nil {
		t.Fatalf("find afternoon: %v", err)
	}
	if got.WeakHandsScore != 70 {
		t.Errorf("recompute should overwrite, got score %.0f", got.WeakHandsScore)
	}
}

func TestMemoryStore_BuySignals(t *testing.T) {
	mem := NewMemoryStore()
	mem.SaveAfternoon(&model.AfternoonAnalysis{Symbol: "ALPHA", Date: testDate, BuySignal: true})
	mem.SaveAfternoon(&model.AfternoonAnalysis{Symbol: "BETA", Date: testDate, BuySignal: false})

	signals, err := mem.BuySignals(testDate)
	if err != nil {
		t.Fatalf("buy signals: %v", err)
	}
	if len(signals) != 1 || signals[0].Symbol != "ALPHA" {
		t.Fatalf("expected only ALPHA, got %v", signals)
	}
}

func TestMemoryStore_Watchlist(t *testing.T) {
	mem := NewMemoryStore()
	if err := mem.SaveWatchlist(testDate, []string{"ALPHA", "BETA"}); err != nil {
		t.Fatalf("save watchlist: %v", err)
	}
	symbols, err := mem.Watchlist(testDate)
	if err != nil {
		t.Fatalf("watchlist: %v", err)
	}
	if len(symbols) != 2 {
		t.Fatalf("expected 2 symbols, got %v", symbols)
	}
}

func TestMemoryStore_ConcurrentWrites(t *testing.T) {
	mem := NewMemoryStore()
	var wg sync.WaitGroup
	symbols := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			mem.SaveMorning(&model.MorningAnalysis{Symbol: symbol, Date: testDate})
			mem.SaveAfternoon(&model.AfternoonAnalysis{Symbol: symbol, Date: testDate, BuySignal: true})
		}(symbol)
	}
	wg.Wait()

	signals, err := mem.BuySignals(testDate)
	if err != nil {
		t.Fatalf("buy signals: %v", err)
	}
	if len(signals) != len(symbols) {
		t.Fatalf("expected %d signals, got %d", len(symbols), len(signals))
	}
}
