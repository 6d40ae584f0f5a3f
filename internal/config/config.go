// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the vacancy bot.
type Config struct {
	TelegramToken string
	DatabaseURL   string
	RedisURL      string // empty keeps sessions in memory

	HHBaseURL   string
	HHUserAgent string
	HHTimeout   time.Duration

	OpsPort  string
	GRPCPort string

	WarmupKeywords      []string
	WarmupIntervalHours int

	SessionTTL time.Duration
}

// Load reads an optional .env file, then environment variables, and
// returns a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	hhTimeout, err := durationEnv("HH_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	if hhTimeout <= 0 {
		return nil, fmt.Errorf("HH_TIMEOUT must be positive, got %s", hhTimeout)
	}

	interval := 6
	if s := os.Getenv("WARMUP_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("WARMUP_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	sessionTTL, err := durationEnv("SESSION_TTL", 0)
	if err != nil {
		return nil, err
	}
	if sessionTTL < 0 {
		return nil, fmt.Errorf("SESSION_TTL cannot be negative")
	}

	return &Config{
		TelegramToken:       token,
		DatabaseURL:         dbURL,
		RedisURL:            os.Getenv("REDIS_URL"),
		HHBaseURL:           getEnv("HH_BASE_URL", "https://api.hh.ru"),
		HHUserAgent:         getEnv("HH_USER_AGENT", "vacancy-bot/1.0"),
		HHTimeout:           hhTimeout,
		OpsPort:             getEnv("OPS_PORT", "8083"),
		GRPCPort:            getEnv("GRPC_PORT", "9093"),
		WarmupKeywords:      splitAndTrim(os.Getenv("WARMUP_KEYWORDS")),
		WarmupIntervalHours: interval,
		SessionTTL:          sessionTTL,
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration, got %q", key, raw)
	}
	return d, nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
