package provider

import (
	"context"
	"time"

	"BTSTRadar/internal/model"
)

// BarProvider serves historical market data. Implementations own their
// I/O timeouts; callers pass a context but do not add per-call
// deadlines.
type BarProvider interface {
	// DailyBars returns daily bars with dates in [from, to], ordered
	// oldest to newest.
	DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]model.Bar, error)
	// IntradayBars returns intraday bars with timestamps in [from, to),
	// ordered oldest to newest. Both bounds carry the trading date.
	IntradayBars(ctx context.Context, symbol string, from, to time.Time) ([]model.Bar, error)
	Name() string
}
