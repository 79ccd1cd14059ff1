package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server
	Port     string
	LogLevel string

	// Record store
	DatabaseURL  string // empty selects the in-memory store
	DBMaxConns   int
	StoreTimeout time.Duration

	// Auctions
	SweepInterval time.Duration
	// ClockOffset is subtracted from a listing's close time before comparing it with now.
	// The scheduling UI has historically written local wall-clock times five hours ahead.
	ClockOffset time.Duration

	// Live store
	CallConnectDelay time.Duration

	// Redis notification fan-out; disabled when RedisAddr is empty
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisNotifyChannel string

	// WebSocket
	WSReadTimeout     time.Duration
	WSWriteTimeout    time.Duration
	WSPingInterval    time.Duration
	WSMaxMessageBytes int64
}

// Load configuration from environment variables, after applying an optional .env file.
func Load() (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	cfg.Port = getEnv("PORT", "8080")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisNotifyChannel = getEnv("REDIS_NOTIFY_CHANNEL", "storefront:notifications")

	cfg.DBMaxConns, err = strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	storeTimeoutMs, err := strconv.ParseInt(getEnv("STORE_TIMEOUT_MS", "5000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEOUT_MS: %w", err)
	}
	cfg.StoreTimeout = time.Duration(storeTimeoutMs) * time.Millisecond

	sweepSeconds, err := strconv.ParseInt(getEnv("AUCTION_SWEEP_INTERVAL_SECONDS", "300"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid AUCTION_SWEEP_INTERVAL_SECONDS: %w", err)
	}
	if sweepSeconds <= 0 {
		return nil, fmt.Errorf("invalid AUCTION_SWEEP_INTERVAL_SECONDS: must be positive")
	}
	cfg.SweepInterval = time.Duration(sweepSeconds) * time.Second

	offsetMinutes, err := strconv.ParseInt(getEnv("AUCTION_CLOCK_OFFSET_MINUTES", "300"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid AUCTION_CLOCK_OFFSET_MINUTES: %w", err)
	}
	cfg.ClockOffset = time.Duration(offsetMinutes) * time.Minute

	connectDelayMs, err := strconv.ParseInt(getEnv("CALL_CONNECT_DELAY_MS", "2000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CALL_CONNECT_DELAY_MS: %w", err)
	}
	cfg.CallConnectDelay = time.Duration(connectDelayMs) * time.Millisecond

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	readSeconds, err := strconv.ParseInt(getEnv("WS_READ_TIMEOUT_SECONDS", "60"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT_SECONDS: %w", err)
	}
	if readSeconds <= 0 {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT_SECONDS: must be positive")
	}
	cfg.WSReadTimeout = time.Duration(readSeconds) * time.Second

	writeSeconds, err := strconv.ParseInt(getEnv("WS_WRITE_TIMEOUT_SECONDS", "10"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT_SECONDS: %w", err)
	}
	if writeSeconds <= 0 {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT_SECONDS: must be positive")
	}
	cfg.WSWriteTimeout = time.Duration(writeSeconds) * time.Second

	pingSeconds, err := strconv.ParseInt(getEnv("WS_PING_INTERVAL_SECONDS", "30"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WS_PING_INTERVAL_SECONDS: %w", err)
	}
	if pingSeconds <= 0 {
		return nil, fmt.Errorf("invalid WS_PING_INTERVAL_SECONDS: must be positive")
	}
	cfg.WSPingInterval = time.Duration(pingSeconds) * time.Second
	if cfg.WSPingInterval >= cfg.WSReadTimeout {
		return nil, fmt.Errorf("invalid WS_PING_INTERVAL_SECONDS: must be shorter than WS_READ_TIMEOUT_SECONDS")
	}

	cfg.WSMaxMessageBytes, err = strconv.ParseInt(getEnv("WS_MAX_MESSAGE_BYTES", "65536"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WS_MAX_MESSAGE_BYTES: %w", err)
	}

	return cfg, nil
}
