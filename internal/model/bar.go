package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar represents a single OHLCV candlestick, daily or intraday.
// Bars are immutable once stored: one per (symbol, date) for daily
// data, one per (symbol, timestamp) for intraday data.
type Bar struct {
	Symbol      string
	Timestamp   time.Time
	Open        decimal.Decimal
	High        decimal.Decimal
	Low         decimal.Decimal
	Close       decimal.Decimal
	Volume      int64
	Trades      int   // number of trades, 0 when the feed omits it
	ValueTraded int64 // turnover in price units, 0 when the feed omits it
}

// TypicalPrice returns (H+L+C)/3 at 4 decimal places.
func (b Bar) TypicalPrice() decimal.Decimal {
	return b.High.Add(b.Low).Add(b.Close).DivRound(decimal.NewFromInt(3), 4)
}

// IsDown reports whether the bar closed below its open.
func (b Bar) IsDown() bool {
	return b.Close.LessThan(b.Open)
}

// Date returns the bar's calendar date with the time component stripped.
func (b Bar) Date() time.Time {
	y, m, d := b.Timestamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, b.Timestamp.Location())
}
