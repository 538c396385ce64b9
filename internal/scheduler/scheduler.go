package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"BTSTRadar/internal/model"
	"BTSTRadar/internal/notifier"
	"BTSTRadar/internal/orchestrator"
	"BTSTRadar/internal/store"

	"github.com/robfig/cron/v3"
)

// Scheduler manages all cron tasks. It owns the wall-clock ordering of
// the pipeline stages: indicators and the candidate screen after the
// close, the three session stages intraday, and the recommendation
// batch in the evening.
type Scheduler struct {
	Cron            *cron.Cron
	Orchestrator    *orchestrator.Orchestrator
	Notifier        *notifier.TelegramNotifier
	Sessions        store.SessionStore
	Recommendations store.RecommendationStore
	Watchlists      store.WatchlistStore
	Symbols         []string
	Ctx             context.Context
}

// CronSpec holds the six stage schedules.
type CronSpec struct {
	Indicators string
	Screen     string
	Morning    string
	MidSession string
	Afternoon  string
	Batch      string
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, o *orchestrator.Orchestrator, tn *notifier.TelegramNotifier,
	sessions store.SessionStore, recs store.RecommendationStore, wl store.WatchlistStore, symbols []string) *Scheduler {
	return &Scheduler{
		Cron:            cron.New(cron.WithSeconds()),
		Orchestrator:    o,
		Notifier:        tn,
		Sessions:        sessions,
		Recommendations: recs,
		Watchlists:      wl,
		Symbols:         symbols,
		Ctx:             ctx,
	}
}

// RegisterAll registers every pipeline stage on its cron schedule.
func (s *Scheduler) RegisterAll(spec CronSpec) error {
	stages := []struct {
		name string
		cron string
		task func()
	}{
		{"indicators", spec.Indicators, s.indicatorsTask},
		{"screen", spec.Screen, s.screenTask},
		{"morning", spec.Morning, s.morningTask},
		{"mid-session", spec.MidSession, s.midSessionTask},
		{"afternoon", spec.Afternoon, s.afternoonTask},
		{"batch", spec.Batch, s.batchTask},
	}
	for _, stage := range stages {
		if _, err := s.Cron.AddFunc(stage.cron, stage.task); err != nil {
			return fmt.Errorf("register %s task: %w", stage.name, err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunBatchNow executes the batch immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunBatchNow() {
	s.batchTask()
}

func (s *Scheduler) indicatorsTask() {
	log.Println("[INFO] running indicator computation")
	s.Orchestrator.ComputeIndicators(s.Ctx, today(), s.Symbols)
}

func (s *Scheduler) screenTask() {
	log.Println("[INFO] running day-1 candidate screen")
	date := today()
	watchlist, err := s.Orchestrator.ScreenCandidates(s.Ctx, date, s.Symbols)
	if err != nil {
		log.Printf("[ERROR] screen candidates: %v", err)
		return
	}
	s.trySend(notifier.FormatWatchlist(date, watchlist))
}

func (s *Scheduler) morningTask() {
	s.runStage(model.StageMorning)
}

func (s *Scheduler) midSessionTask() {
	s.runStage(model.StageMidSession)
}

func (s *Scheduler) afternoonTask() {
	date := today()
	s.runStage(model.StageAfternoon)

	signals, err := s.Sessions.BuySignals(date)
	if err != nil {
		log.Printf("[ERROR] load buy signals: %v", err)
		return
	}
	for _, signal := range signals {
		s.trySend(notifier.FormatBuySignal(signal))
	}
}

func (s *Scheduler) runStage(stage model.SessionStage) {
	log.Printf("[INFO] running %s stage", stage)
	if err := s.Orchestrator.RunStage(s.Ctx, stage, today()); err != nil {
		log.Printf("[ERROR] stage %s: %v", stage, err)
	}
}

func (s *Scheduler) batchTask() {
	log.Println("[INFO] running end-of-day batch")
	date := today()
	recs, err := s.Orchestrator.RunBatch(s.Ctx, date)
	if err != nil {
		log.Printf("[ERROR] batch run: %v", err)
		s.trySend(fmt.Sprintf("❌ Batch run failed: %v", err))
		return
	}
	s.trySend(notifier.FormatDigest(date, recs))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/today":
		recs, err := s.Recommendations.RecommendationsForDate(today())
		if err != nil {
			return fmt.Sprintf("Failed to load recommendations: %v", err)
		}
		return notifier.FormatDigest(today(), recs)
	case "/watchlist":
		date := orchestrator.PrevTradingDay(today())
		symbols, err := s.Watchlists.Watchlist(date)
		if err != nil {
			return fmt.Sprintf("Failed to load watchlist: %v", err)
		}
		return notifier.FormatWatchlist(date, symbols)
	case "/run":
		go s.batchTask()
		return "Batch run started."
	default:
		return "Commands:\n• /today — today's recommendations\n• /watchlist — active watchlist\n• /run — run the batch now"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
