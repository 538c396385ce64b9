package model

import "time"

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// LiquidityRisk is the liquidity overlay with its explanatory factors.
type LiquidityRisk struct {
	Level   RiskLevel
	Factors string
}

// GapRisk is the overnight-gap overlay with its explanatory factors.
type GapRisk struct {
	Level   RiskLevel
	Factors string
}

// RiskAssessment pairs both overlays for a symbol on a date. Computed
// on demand, never cached.
type RiskAssessment struct {
	Symbol    string
	Date      time.Time
	Liquidity LiquidityRisk
	Gap       GapRisk
}
