package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries everything the relay reads from its environment.
type Config struct {
	Addr             string
	RelaySecret      string
	DefaultEventType string
	DefaultSourceID  string
	SendTimeout      time.Duration

	LogLevel  string
	LogFormat string
	LogOutput string
	LogFile   string
}

// Load builds the configuration from environment variables, applying
// defaults where unset.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:             getEnv("RELAY_ADDR", ":8080"),
		RelaySecret:      getEnv("RELAY_SECRET", ""),
		DefaultEventType: getEnv("RELAY_DEFAULT_EVENT_TYPE", "notification"),
		DefaultSourceID:  getEnv("RELAY_DEFAULT_SOURCE_ID", "unknown"),
		LogLevel:         getEnv("RELAY_LOG_LEVEL", "info"),
		LogFormat:        getEnv("RELAY_LOG_FORMAT", "console"),
		LogOutput:        getEnv("RELAY_LOG_OUTPUT", "stdout"),
		LogFile:          getEnv("RELAY_LOG_FILE", ""),
	}

	sendTimeoutSecs, err := strconv.Atoi(getEnv("RELAY_SEND_TIMEOUT_SECONDS", "5"))
	if err != nil {
		return nil, fmt.Errorf("RELAY_SEND_TIMEOUT_SECONDS must be an integer: %w", err)
	}
	if sendTimeoutSecs <= 0 {
		return nil, fmt.Errorf("RELAY_SEND_TIMEOUT_SECONDS must be positive, got %d", sendTimeoutSecs)
	}
	cfg.SendTimeout = time.Duration(sendTimeoutSecs) * time.Second

	if cfg.DefaultEventType == "" {
		return nil, fmt.Errorf("RELAY_DEFAULT_EVENT_TYPE must not be empty")
	}
	if cfg.DefaultSourceID == "" {
		return nil, fmt.Errorf("RELAY_DEFAULT_SOURCE_ID must not be empty")
	}
	if cfg.LogOutput == "file" && cfg.LogFile == "" {
		return nil, fmt.Errorf("RELAY_LOG_FILE is required when RELAY_LOG_OUTPUT=file")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
