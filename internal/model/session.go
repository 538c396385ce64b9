package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStage identifies one of the three ordered intraday analysis stages.
type SessionStage string

const (
	StageMorning    SessionStage = "MORNING"
	StageMidSession SessionStage = "MID_SESSION"
	StageAfternoon  SessionStage = "AFTERNOON"
)

// MorningAnalysis captures the 09:15-10:00 window: the overnight gap
// and whether the open looked like panic selling.
type MorningAnalysis struct {
	Symbol        string
	Date          time.Time
	GapPercent    float64
	Delta         float64 // cumulative (close-open)*volume
	Volume        int64
	DownBars      int
	TotalBars     int
	AvgTradeSize  float64
	PanicSelling  bool
}

// MidSessionAnalysis captures the 10:00-12:00 window: whether selling
// is being absorbed.
type MidSessionAnalysis struct {
	Symbol            string
	Date              time.Time
	Delta             float64
	Recovering        bool
	VWAP              float64 // session VWAP over 09:15-12:00
	AboveVWAP         bool
	AbsorptionStarted bool
}

// AfternoonAnalysis aggregates 09:15-14:00 and carries the final
// weak-hands score, the buy decision, and trade levels when the signal
// fires.
type AfternoonAnalysis struct {
	Symbol          string
	Date            time.Time
	AnalyzedAt      time.Time
	CurrentPrice    decimal.Decimal
	SessionDelta    float64
	RetailIntensity float64
	VWAPReclaimed   bool
	GoodAbsorption  bool
	SupplyExhausted bool
	WeakHandsScore  float64
	BuySignal       bool

	// Trade levels, set only when BuySignal is true.
	EntryPrice          decimal.Decimal
	TargetPrice         decimal.Decimal
	StopLoss            decimal.Decimal
	RiskReward          decimal.Decimal
	PositionSizePercent decimal.Decimal
}

// RetailIntensityMetrics holds the six proxy sub-scores behind the
// afternoon composite. All sub-scores are in [0,100].
type RetailIntensityMetrics struct {
	Volatility        float64
	VolumeClustering  float64
	EstimatedDelivery float64
	PriceRejection    float64
	VolumeCoherence   float64
	MomentumExhaustion float64
	Composite         float64
}
