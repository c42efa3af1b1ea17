package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DB_PORT", "FAST_INTERVAL_MINUTES", "SLOW_INTERVAL_HOURS",
		"SYMBOLS", "DB_CONNECT_RETRIES", "DB_CONNECT_DELAY_SECONDS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "5432", cfg.DBPort)
	require.Equal(t, 5*time.Minute, cfg.FastInterval)
	require.Equal(t, 24*time.Hour, cfg.SlowInterval)
	require.Equal(t, []string{"AAPL", "GOOGL", "MSFT"}, cfg.Symbols)
	require.Equal(t, 20, cfg.DBConnectRetries)
	require.Equal(t, 2*time.Second, cfg.DBConnectDelay)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SYMBOLS", " aapl, nvda ,tsla ")
	t.Setenv("FAST_INTERVAL_MINUTES", "10")
	t.Setenv("SLOW_INTERVAL_HOURS", "12")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, []string{"AAPL", "NVDA", "TSLA"}, cfg.Symbols)
	require.Equal(t, 10*time.Minute, cfg.FastInterval)
	require.Equal(t, 12*time.Hour, cfg.SlowInterval)
}

func TestLoadConfig_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("FAST_INTERVAL_MINUTES", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, cfg.FastInterval)
}
