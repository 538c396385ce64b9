package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"BTSTRadar/internal/btst"
	"BTSTRadar/internal/config"
	"BTSTRadar/internal/notifier"
	"BTSTRadar/internal/orchestrator"
	"BTSTRadar/internal/provider"
	"BTSTRadar/internal/risk"
	"BTSTRadar/internal/scheduler"
	"BTSTRadar/internal/screener"
	"BTSTRadar/internal/session"
	"BTSTRadar/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] BTSTRadar starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init bar provider
	bars := provider.NewHTTPProvider(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	log.Printf("[INFO] data source: %s", bars.Name())

	// Init stores: session state lives in memory per trading day, the
	// indicator sets and recommendations go to SQLite.
	sessions := store.NewMemoryStore()
	var archive store.Archive
	if cfg.Database.SQLitePath != "" {
		sqliteStore, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using noop: %v", err)
			archive = store.NewNoopStore()
		} else {
			archive = sqliteStore
			defer sqliteStore.Close()
		}
	} else {
		archive = store.NewNoopStore()
	}

	// Init pipeline components
	scr := screener.New(bars, sessions)
	analyzer := session.NewAnalyzer(bars, sessions)
	riskEngine := risk.NewEngine(bars)
	scorer := btst.NewScorer(bars, archive, riskEngine)

	orch := orchestrator.New(bars, scr, analyzer, scorer, archive, archive, sessions,
		orchestrator.WithWorkers(cfg.Analysis.Workers),
		orchestrator.WithConfidenceThreshold(cfg.Analysis.ConfidenceThreshold),
	)

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, orch, tn, sessions, archive, sessions, cfg.DataSource.Symbols)
	if err := sched.RegisterAll(scheduler.CronSpec{
		Indicators: cfg.Schedule.IndicatorsCron,
		Screen:     cfg.Schedule.ScreenCron,
		Morning:    cfg.Schedule.MorningCron,
		MidSession: cfg.Schedule.MidSessionCron,
		Afternoon:  cfg.Schedule.AfternoonCron,
		Batch:      cfg.Schedule.BatchCron,
	}); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if cfg.Telegram.BotToken != "" {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing batch now")
		go sched.RunBatchNow()
	}

	log.Println("[INFO] BTSTRadar is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] BTSTRadar stopped")
}
