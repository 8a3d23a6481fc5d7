package config

import (
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	RedisURL    string
	DatabaseURL string

	StartingSide string

	SessionTTLSec  int
	HistoryLimit   int
	MaxOpenMatches int

	MessageDir string
	BoardOut   string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		StartingSide:   "red",
		SessionTTLSec:  86400,
		HistoryLimit:   10,
		MaxOpenMatches: 200,
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessageDir = strings.TrimSpace(os.Getenv("CHECKERS_MESSAGE_DIR"))
	cfg.BoardOut = strings.TrimSpace(os.Getenv("CHECKERS_BOARD_OUT"))

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("CHECKERS_STARTING_SIDE"))); v != "" {
		if v == "red" || v == "black" {
			cfg.StartingSide = v
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHECKERS_SESSION_TTL")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHECKERS_HISTORY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHECKERS_MAX_OPEN_MATCHES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxOpenMatches = n
		}
	}

	return cfg, nil
}
