package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "") // registers restore on cleanup
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "PORT", "DATABASE_URL", "AUCTION_CLOCK_OFFSET_MINUTES", "AUCTION_SWEEP_INTERVAL_SECONDS",
		"CALL_CONNECT_DELAY_MS", "WS_READ_TIMEOUT_SECONDS", "WS_PING_INTERVAL_SECONDS", "REDIS_NOTIFY_CHANNEL")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Empty(t, cfg.DatabaseURL)
	require.Equal(t, 5*time.Hour, cfg.ClockOffset)
	require.Equal(t, 5*time.Minute, cfg.SweepInterval)
	require.Equal(t, 2*time.Second, cfg.CallConnectDelay)
	require.Equal(t, "storefront:notifications", cfg.RedisNotifyChannel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUCTION_CLOCK_OFFSET_MINUTES", "0")
	t.Setenv("CALL_CONNECT_DELAY_MS", "50")
	t.Setenv("STORE_TIMEOUT_MS", "250")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), cfg.ClockOffset)
	require.Equal(t, 50*time.Millisecond, cfg.CallConnectDelay)
	require.Equal(t, 250*time.Millisecond, cfg.StoreTimeout)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non_numeric_offset", key: "AUCTION_CLOCK_OFFSET_MINUTES", value: "five"},
		{name: "zero_sweep_interval", key: "AUCTION_SWEEP_INTERVAL_SECONDS", value: "0"},
		{name: "bad_redis_db", key: "REDIS_DB", value: "x"},
		{name: "bad_max_conns", key: "DB_MAX_CONNS", value: "many"},
		{name: "ping_not_shorter_than_read", key: "WS_PING_INTERVAL_SECONDS", value: "600"},
		{name: "zero_ping_interval", key: "WS_PING_INTERVAL_SECONDS", value: "0"},
		{name: "negative_ping_interval", key: "WS_PING_INTERVAL_SECONDS", value: "-5"},
		{name: "zero_read_timeout", key: "WS_READ_TIMEOUT_SECONDS", value: "0"},
		{name: "negative_write_timeout", key: "WS_WRITE_TIMEOUT_SECONDS", value: "-1"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.key)
		})
	}
}
