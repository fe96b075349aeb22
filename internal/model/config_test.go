package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Server.GatewayURL)
	assert.Equal(t, 30, cfg.Realtime.HeartbeatSec)
	assert.Equal(t, 30, cfg.Display.RefreshIntervalSec)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  gateway_url: https://portal.school.edu
  student_url: https://students.school.edu
realtime:
  heartbeat_sec: 10
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://portal.school.edu", cfg.Server.GatewayURL)
	assert.Equal(t, "https://students.school.edu", cfg.Server.StudentURL)
	assert.Equal(t, 10, cfg.Realtime.HeartbeatSec)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset keys keep their defaults.
	assert.Equal(t, 30, cfg.Display.RefreshIntervalSec)
}

func TestServiceURLFallsBackToGateway(t *testing.T) {
	s := ServerConfig{GatewayURL: "http://gw:8080"}

	assert.Equal(t, "http://gw:8080", s.ServiceURL(""))
	assert.Equal(t, "http://direct:9090", s.ServiceURL("http://direct:9090"))
}

func TestSaveConfigRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := defaultAppConfig()
	cfg.Server.GatewayURL = "https://portal.school.edu"
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://portal.school.edu", loaded.Server.GatewayURL)
}
