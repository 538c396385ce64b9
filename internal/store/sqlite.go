package store

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"BTSTRadar/internal/model"
)

// SQLiteStore persists indicator sets and recommendations to SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the batch writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS indicator_sets (
			symbol          TEXT NOT NULL,
			date            TEXT NOT NULL,
			rsi14           TEXT,
			ema9            TEXT,
			ema21           TEXT,
			sma20           TEXT,
			atr14           TEXT,
			macd            TEXT,
			macd_signal     TEXT,
			macd_histogram  TEXT,
			macd_crossover  TEXT,
			bb_upper        TEXT,
			bb_lower        TEXT,
			bb_width        TEXT,
			vwap            TEXT,
			obv             INTEGER,
			obv_ema         TEXT,
			volume_sma20    INTEGER,
			volume_ratio    TEXT,
			pvt             TEXT,
			volume_roc      TEXT,
			highest20       TEXT,
			lowest20        TEXT,
			pivot           TEXT,
			resistance1     TEXT,
			resistance2     TEXT,
			support1        TEXT,
			support2        TEXT,
			price_strength  TEXT,
			volume_strength TEXT,
			PRIMARY KEY (symbol, date)
		)`,

		`CREATE TABLE IF NOT EXISTS recommendations (
			symbol                    TEXT NOT NULL,
			date                      TEXT NOT NULL,
			action                    TEXT,
			confidence                REAL,
			had_late_surge            INTEGER,
			breakout_level            TEXT,
			late_session_volume_ratio TEXT,
			gap_percent               REAL,
			shows_absorption          INTEGER,
			pullback_depth            REAL,
			avg_trade_size            REAL,
			retail_intensity          REAL,
			vwap_reclaimed            INTEGER,
			supply_exhausted          INTEGER,
			strength_score            REAL,
			entry_price               TEXT,
			target_price              TEXT,
			stop_loss                 TEXT,
			risk_reward_t1            TEXT,
			risk_reward_t2            TEXT,
			position_size_pct         TEXT,
			liquidity_risk            TEXT,
			liquidity_factors         TEXT,
			gap_risk                  TEXT,
			gap_factors               TEXT,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reco_date ON recommendations(date)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// ndValue maps a NullDecimal to a TEXT column value.
func ndValue(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func scanND(s sql.NullString) decimal.NullDecimal {
	if !s.Valid {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return model.ND(d)
}

func (s *SQLiteStore) SaveIndicators(set *model.IndicatorSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT OR REPLACE INTO indicator_sets
		(symbol, date, rsi14, ema9, ema21, sma20, atr14,
		 macd, macd_signal, macd_histogram, macd_crossover,
		 bb_upper, bb_lower, bb_width,
		 vwap, obv, obv_ema, volume_sma20, volume_ratio, pvt, volume_roc,
		 highest20, lowest20, pivot, resistance1, resistance2, support1, support2,
		 price_strength, volume_strength)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		set.Symbol, DateKey(set.Date),
		ndValue(set.RSI14), ndValue(set.EMA9), ndValue(set.EMA21), ndValue(set.SMA20), ndValue(set.ATR14),
		ndValue(set.MACD), ndValue(set.MACDSignal), ndValue(set.MACDHistogram), string(set.MACDCrossover),
		ndValue(set.BollingerUpper), ndValue(set.BollingerLower), ndValue(set.BollingerWidth),
		ndValue(set.VWAP), set.OBV, ndValue(set.OBVEMA), set.VolumeSMA20, ndValue(set.VolumeRatio),
		ndValue(set.PVT), ndValue(set.VolumeROC),
		ndValue(set.Highest20), ndValue(set.Lowest20), ndValue(set.Pivot),
		ndValue(set.Resistance1), ndValue(set.Resistance2), ndValue(set.Support1), ndValue(set.Support2),
		ndValue(set.PriceStrength), ndValue(set.VolumeStrength),
	)
	return err
}

func (s *SQLiteStore) FindIndicators(symbol string, date time.Time) (*model.IndicatorSet, error) {
	row := s.db.QueryRow(`SELECT
		rsi14, ema9, ema21, sma20, atr14,
		macd, macd_signal, macd_histogram, macd_crossover,
		bb_upper, bb_lower, bb_width,
		vwap, obv, obv_ema, volume_sma20, volume_ratio, pvt, volume_roc,
		highest20, lowest20, pivot, resistance1, resistance2, support1, support2,
		price_strength, volume_strength
		FROM indicator_sets WHERE symbol = ? AND date = ?`, symbol, DateKey(date))

	var (
		rsi, ema9, ema21, sma20, atr                      sql.NullString
		macd, macdSignal, macdHist                        sql.NullString
		crossover                                         sql.NullString
		bbUpper, bbLower, bbWidth                         sql.NullString
		vwap, obvEMA, volumeRatio, pvt, volumeROC         sql.NullString
		highest, lowest, pivot, r1, r2, sup1, sup2        sql.NullString
		priceStrength, volumeStrength                     sql.NullString
		obv, volumeSMA                                    int64
	)
	err := row.Scan(&rsi, &ema9, &ema21, &sma20, &atr,
		&macd, &macdSignal, &macdHist, &crossover,
		&bbUpper, &bbLower, &bbWidth,
		&vwap, &obv, &obvEMA, &volumeSMA, &volumeRatio, &pvt, &volumeROC,
		&highest, &lowest, &pivot, &r1, &r2, &sup1, &sup2,
		&priceStrength, &volumeStrength)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find indicators: %w", err)
	}

	set := &model.IndicatorSet{
		Symbol:         symbol,
		Date:           date,
		RSI14:          scanND(rsi),
		EMA9:           scanND(ema9),
		EMA21:          scanND(ema21),
		SMA20:          scanND(sma20),
		ATR14:          scanND(atr),
		MACD:           scanND(macd),
		MACDSignal:     scanND(macdSignal),
		MACDHistogram:  scanND(macdHist),
		MACDCrossover:  model.MACDCrossover(crossover.String),
		BollingerUpper: scanND(bbUpper),
		BollingerLower: scanND(bbLower),
		BollingerWidth: scanND(bbWidth),
		VWAP:           scanND(vwap),
		OBV:            obv,
		OBVEMA:         scanND(obvEMA),
		VolumeSMA20:    volumeSMA,
		VolumeRatio:    scanND(volumeRatio),
		PVT:            scanND(pvt),
		VolumeROC:      scanND(volumeROC),
		Highest20:      scanND(highest),
		Lowest20:       scanND(lowest),
		Pivot:          scanND(pivot),
		Resistance1:    scanND(r1),
		Resistance2:    scanND(r2),
		Support1:       scanND(sup1),
		Support2:       scanND(sup2),
		PriceStrength:  scanND(priceStrength),
		VolumeStrength: scanND(volumeStrength),
	}
	return set, nil
}

func (s *SQLiteStore) SaveRecommendations(recs []*model.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, r := range recs {
		_, err := tx.Exec(`INSERT OR REPLACE INTO recommendations
			(symbol, date, action, confidence,
			 had_late_surge, breakout_level, late_session_volume_ratio,
			 gap_percent, shows_absorption, pullback_depth, avg_trade_size,
			 retail_intensity, vwap_reclaimed, supply_exhausted, strength_score,
			 entry_price, target_price, stop_loss, risk_reward_t1, risk_reward_t2, position_size_pct,
			 liquidity_risk, liquidity_factors, gap_risk, gap_factors)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			r.Symbol, DateKey(r.Date), string(r.Action), r.Confidence,
			r.HadLateSurge, r.BreakoutLevel.String(), ndValue(r.LateSessionVolumeRatio),
			r.GapPercent, r.ShowsAbsorption, r.PullbackDepth, r.AvgTradeSize,
			r.RetailIntensity, r.VWAPReclaimed, r.SupplyExhausted, r.StrengthScore,
			ndValue(r.EntryPrice), ndValue(r.TargetPrice), ndValue(r.StopLoss),
			ndValue(r.RiskRewardT1), ndValue(r.RiskRewardT2), ndValue(r.PositionSizePercent),
			string(r.LiquidityRisk.Level), r.LiquidityRisk.Factors,
			string(r.GapRisk.Level), r.GapRisk.Factors,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("save recommendation %s: %w", r.Symbol, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) FindRecommendation(symbol string, date time.Time) (*model.Recommendation, error) {
	rows, err := s.queryRecommendations(`WHERE symbol = ? AND date = ?`, symbol, DateKey(date))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

func (s *SQLiteStore) RecommendationsForDate(date time.Time) ([]*model.Recommendation, error) {
	return s.queryRecommendations(`WHERE date = ? ORDER BY confidence DESC`, DateKey(date))
}

func (s *SQLiteStore) queryRecommendations(where string, args ...any) ([]*model.Recommendation, error) {
	rows, err := s.db.Query(`SELECT
		symbol, date, action, confidence,
		had_late_surge, breakout_level, late_session_volume_ratio,
		gap_percent, shows_absorption, pullback_depth, avg_trade_size,
		retail_intensity, vwap_reclaimed, supply_exhausted, strength_score,
		entry_price, target_price, stop_loss, risk_reward_t1, risk_reward_t2, position_size_pct,
		liquidity_risk, liquidity_factors, gap_risk, gap_factors
		FROM recommendations `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	var out []*model.Recommendation
	for rows.Next() {
		var (
			r                                     model.Recommendation
			dateStr, action                       string
			breakoutLevel                         sql.NullString
			lateVR, entry, target, stop           sql.NullString
			rrT1, rrT2, posSize                   sql.NullString
			liqLevel, liqFactors                  sql.NullString
			gapLevel, gapFactors                  sql.NullString
		)
		err := rows.Scan(&r.Symbol, &dateStr, &action, &r.Confidence,
			&r.HadLateSurge, &breakoutLevel, &lateVR,
			&r.GapPercent, &r.ShowsAbsorption, &r.PullbackDepth, &r.AvgTradeSize,
			&r.RetailIntensity, &r.VWAPReclaimed, &r.SupplyExhausted, &r.StrengthScore,
			&entry, &target, &stop, &rrT1, &rrT2, &posSize,
			&liqLevel, &liqFactors, &gapLevel, &gapFactors)
		if err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		r.Date, _ = time.Parse("2006-01-02", dateStr)
		r.Action = model.Action(action)
		if breakoutLevel.Valid {
			if d, err := decimal.NewFromString(breakoutLevel.String); err == nil {
				r.BreakoutLevel = d
			}
		}
		r.LateSessionVolumeRatio = scanND(lateVR)
		r.EntryPrice = scanND(entry)
		r.TargetPrice = scanND(target)
		r.StopLoss = scanND(stop)
		r.RiskRewardT1 = scanND(rrT1)
		r.RiskRewardT2 = scanND(rrT2)
		r.PositionSizePercent = scanND(posSize)
		r.LiquidityRisk = model.LiquidityRisk{Level: model.RiskLevel(liqLevel.String), Factors: liqFactors.String}
		r.GapRisk = model.GapRisk{Level: model.RiskLevel(gapLevel.String), Factors: gapFactors.String}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
