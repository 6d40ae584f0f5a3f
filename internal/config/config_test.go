package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "postgres://localhost/vacancies_db")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "https://api.hh.ru", cfg.HHBaseURL)
	require.Equal(t, 15*time.Second, cfg.HHTimeout)
	require.Equal(t, "8083", cfg.OpsPort)
	require.Equal(t, "9093", cfg.GRPCPort)
	require.Equal(t, 6, cfg.WarmupIntervalHours)
	require.Empty(t, cfg.WarmupKeywords)
	require.Empty(t, cfg.RedisURL)
	require.Zero(t, cfg.SessionTTL)
}

func TestFromEnvRequiredVariables(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	_, err := FromEnv()
	require.ErrorContains(t, err, "TELEGRAM_TOKEN")

	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "")
	_, err = FromEnv()
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("HH_TIMEOUT", "3s")
	t.Setenv("WARMUP_KEYWORDS", " golang, cook ,, driver ")
	t.Setenv("WARMUP_INTERVAL_HOURS", "12")
	t.Setenv("SESSION_TTL", "24h")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	require.Equal(t, 3*time.Second, cfg.HHTimeout)
	require.Equal(t, []string{"golang", "cook", "driver"}, cfg.WarmupKeywords)
	require.Equal(t, 12, cfg.WarmupIntervalHours)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"WARMUP_INTERVAL_HOURS": "0",
		"HH_TIMEOUT":            "soon",
		"SESSION_TTL":           "-1h",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, value)
			_, err := FromEnv()
			require.ErrorContains(t, err, key)
		})
	}
}
