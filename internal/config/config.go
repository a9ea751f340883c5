package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config keeps runtime settings for the planner bot.
type Config struct {
	TelegramToken string `env:"TELEGRAM_TOKEN"`
	DatabaseURL   string `env:"DATABASE_URL" env-default:"habit_planner.db"`
	ReportTime    string `env:"REPORT_TIME" env-default:"08:00"`
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env: %w", err)
	}

	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	if err := validateReportTime(cfg.ReportTime); err != nil {
		return cfg, fmt.Errorf("REPORT_TIME: %w", err)
	}

	return cfg, nil
}

func validateReportTime(raw string) error {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return fmt.Errorf("invalid time %q, expected HH:MM", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid minute in %q", raw)
	}
	return nil
}
