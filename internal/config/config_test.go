package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearRelayEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"RELAY_LISTEN_ADDR", "RELAY_REDIS_ADDR", "RELAY_REPO_BACKEND", "RELAY_SQLITE_PATH",
		"RELAY_HEARTBEAT_TIMEOUT", "RELAY_SWEEP_INTERVAL", "RELAY_PUBLISHER_QUEUE_CAPACITY",
		"RELAY_SNAPSHOT_INTERVAL", "LOG_LEVEL", "LOG_PRETTY", "RELAY_ARCHIVER_ENABLED", "RELAY_ARCHIVER_BUCKET",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearRelayEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8765", cfg.ListenAddr)
	assert.Equal(t, "memory", cfg.RepoBackend)
	assert.Equal(t, 90*time.Second, cfg.HeartbeatTimeout)
	assert.False(t, cfg.ArchiverEnabled)
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	clearRelayEnv(t)
	os.Setenv("RELAY_REPO_BACKEND", "sqlite")
	os.Setenv("RELAY_SQLITE_PATH", "/tmp/relay.db")
	defer clearRelayEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.RepoBackend)
	assert.Equal(t, "/tmp/relay.db", cfg.SQLitePath)
}

func TestValidate_RejectsUnknownRepoBackend(t *testing.T) {
	cfg := &Config{RepoBackend: "mongo"}
	assert.Error(t, cfg.Validate())
}

func TestValidate_ArchiverRequiresBucket(t *testing.T) {
	cfg := &Config{RepoBackend: "memory", ArchiverEnabled: true}
	assert.Error(t, cfg.Validate())
}
