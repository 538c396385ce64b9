package store

import (
	"errors"
	"time"

	"BTSTRadar/internal/model"
)

// ErrNotFound is returned when no record exists for the requested key.
var ErrNotFound = errors.New("record not found")

// DateKey normalizes a timestamp to the date string used as a store key.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// IndicatorStore persists indicator sets keyed by (symbol, date) with
// idempotent upsert semantics.
type IndicatorStore interface {
	SaveIndicators(set *model.IndicatorSet) error
	FindIndicators(symbol string, date time.Time) (*model.IndicatorSet, error)
}

// SessionStore holds intraday session analyses keyed by (symbol, date,
// stage). Earlier stages write once, later stages read; writes to the
// same key overwrite. Implementations must allow concurrent access for
// distinct symbols.
type SessionStore interface {
	SaveMorning(a *model.MorningAnalysis) error
	FindMorning(symbol string, date time.Time) (*model.MorningAnalysis, error)
	SaveMidSession(a *model.MidSessionAnalysis) error
	FindMidSession(symbol string, date time.Time) (*model.MidSessionAnalysis, error)
	SaveAfternoon(a *model.AfternoonAnalysis) error
	FindAfternoon(symbol string, date time.Time) (*model.AfternoonAnalysis, error)
	BuySignals(date time.Time) ([]*model.AfternoonAnalysis, error)
}

// RecommendationStore persists end-of-day recommendations keyed by
// (symbol, date) with idempotent upsert semantics.
type RecommendationStore interface {
	SaveRecommendations(recs []*model.Recommendation) error
	FindRecommendation(symbol string, date time.Time) (*model.Recommendation, error)
	RecommendationsForDate(date time.Time) ([]*model.Recommendation, error)
}

// WatchlistStore holds each day's qualifying day-1 candidates for the
// next day's analysis run.
type WatchlistStore interface {
	SaveWatchlist(date time.Time, symbols []string) error
	Watchlist(date time.Time) ([]string, error)
}

// Archive is the durable backend behind the daily pipeline: indicator
// sets and recommendations survive restarts, session state does not.
type Archive interface {
	IndicatorStore
	RecommendationStore
	Close() error
}
