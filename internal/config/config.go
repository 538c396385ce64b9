package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL string   `yaml:"base_url"`
		APIKey  string   `yaml:"api_key"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"data_source"`
	Analysis struct {
		Workers             int     `yaml:"workers"`
		ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	} `yaml:"analysis"`
	Schedule struct {
		IndicatorsCron string `yaml:"indicators_cron"`
		ScreenCron     string `yaml:"screen_cron"`
		MorningCron    string `yaml:"morning_cron"`
		MidSessionCron string `yaml:"mid_session_cron"`
		AfternoonCron  string `yaml:"afternoon_cron"`
		BatchCron      string `yaml:"batch_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("ANALYSIS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.Workers = n
		}
	}
	if v := os.Getenv("CONFIDENCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analysis.ConfidenceThreshold = f
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Analysis.Workers == 0 {
		cfg.Analysis.Workers = 8
	}
	if cfg.Analysis.ConfidenceThreshold == 0 {
		cfg.Analysis.ConfidenceThreshold = 50
	}
	if cfg.Schedule.IndicatorsCron == "" {
		cfg.Schedule.IndicatorsCron = "0 0 17 * * 1-5"
	}
	if cfg.Schedule.ScreenCron == "" {
		cfg.Schedule.ScreenCron = "0 30 17 * * 1-5"
	}
	if cfg.Schedule.MorningCron == "" {
		cfg.Schedule.MorningCron = "0 0 10 * * 1-5"
	}
	if cfg.Schedule.MidSessionCron == "" {
		cfg.Schedule.MidSessionCron = "0 0 12 * * 1-5"
	}
	if cfg.Schedule.AfternoonCron == "" {
		cfg.Schedule.AfternoonCron = "0 0 14 * * 1-5"
	}
	if cfg.Schedule.BatchCron == "" {
		cfg.Schedule.BatchCron = "0 0 18 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/btst_radar.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required")
	}
	if len(c.DataSource.Symbols) == 0 {
		return fmt.Errorf("data_source.symbols must list at least one symbol")
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be positive")
	}
	if c.Analysis.ConfidenceThreshold < 0 {
		return fmt.Errorf("analysis.confidence_threshold must not be negative")
	}
	return nil
}
