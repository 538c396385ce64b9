package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action is the final call for a symbol.
type Action string

const (
	ActionBuy   Action = "BUY"
	ActionHold  Action = "HOLD"
	ActionAvoid Action = "AVOID"
)

// Recommendation is the end-of-day BTST output for one (symbol, date).
// Persisted once per key; a recompute overwrites.
type Recommendation struct {
	Symbol string
	Date   time.Time

	// Day-1 characteristics.
	HadLateSurge           bool
	BreakoutLevel          decimal.Decimal
	LateSessionVolumeRatio decimal.NullDecimal

	// Day-2 behavior.
	GapPercent      float64
	ShowsAbsorption bool
	PullbackDepth   float64
	AvgTradeSize    float64
	RetailIntensity float64
	VWAPReclaimed   bool
	SupplyExhausted bool

	StrengthScore float64
	Confidence    float64
	Action        Action

	EntryPrice          decimal.NullDecimal
	TargetPrice         decimal.NullDecimal
	StopLoss            decimal.NullDecimal
	RiskRewardT1        decimal.NullDecimal
	RiskRewardT2        decimal.NullDecimal
	PositionSizePercent decimal.NullDecimal

	LiquidityRisk LiquidityRisk
	GapRisk       GapRisk
}
