package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
  allowed_origins: ["http://localhost:3000"]
log:
  level: debug
  format: text
dataset:
  source: file
  dir: ./data
  ttl: 30m
quiz:
  users: ["Alex"]
  session_ttl: 10m
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, SourceFile, cfg.Dataset.Source)
	assert.Equal(t, "./data", cfg.Dataset.Dir)
	assert.Equal(t, []string{"Alex"}, cfg.Quiz.Users)
	assert.Equal(t, 30*time.Minute, TTLDuration(cfg.Dataset.TTL, time.Minute))
	assert.Equal(t, 10*time.Minute, TTLDuration(cfg.Quiz.SessionTTL, time.Minute))
}

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"8080\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceSheets, cfg.Dataset.Source)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultUsers, cfg.Quiz.Users)
	assert.Equal(t, DefaultSessionTTL, cfg.Quiz.SessionTTL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestTTLDuration(t *testing.T) {
	assert.Equal(t, time.Minute, TTLDuration("", time.Minute))
	assert.Equal(t, time.Minute, TTLDuration("not-a-duration", time.Minute))
	assert.Equal(t, 90*time.Second, TTLDuration("90s", time.Minute))
}
