package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.RelaySecret)
	assert.Equal(t, "notification", cfg.DefaultEventType)
	assert.Equal(t, "unknown", cfg.DefaultSourceID)
	assert.Equal(t, 5*time.Second, cfg.SendTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RELAY_ADDR", ":9999")
	t.Setenv("RELAY_SECRET", "hunter2")
	t.Setenv("RELAY_DEFAULT_EVENT_TYPE", "event")
	t.Setenv("RELAY_DEFAULT_SOURCE_ID", "relay")
	t.Setenv("RELAY_SEND_TIMEOUT_SECONDS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "hunter2", cfg.RelaySecret)
	assert.Equal(t, "event", cfg.DefaultEventType)
	assert.Equal(t, "relay", cfg.DefaultSourceID)
	assert.Equal(t, 2*time.Second, cfg.SendTimeout)
}

func TestLoad_InvalidSendTimeout(t *testing.T) {
	t.Setenv("RELAY_SEND_TIMEOUT_SECONDS", "nope")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("RELAY_SEND_TIMEOUT_SECONDS", "-1")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_FileOutputRequiresPath(t *testing.T) {
	t.Setenv("RELAY_LOG_OUTPUT", "file")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("RELAY_LOG_FILE", "/var/log/relay.log")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/var/log/relay.log", cfg.LogFile)
}
