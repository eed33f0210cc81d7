package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		WebSocket: WebSocketConfig{
			Host:            "0.0.0.0",
			Port:            3001,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			SendQueueSize:   64,
			PingInterval:    54 * time.Second,
			WriteTimeout:    10 * time.Second,
			MaxMessageBytes: 65536,
		},
		Status: StatusConfig{
			Host: "0.0.0.0",
			Port: 8081,
		},
		Match: MatchConfig{
			CodeRetryCap: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestWebSocketAddr(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "0.0.0.0:3001", cfg.WebSocket.Addr())
}

func TestStatusAddr(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "0.0.0.0:8081", cfg.Status.Addr())
}

func TestValidate_BadPort(t *testing.T) {
	cfg := validConfig()
	cfg.WebSocket.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_BadRetryCap(t *testing.T) {
	cfg := validConfig()
	cfg.Match.CodeRetryCap = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
websocket:
  host: 127.0.0.1
  port: 4001
  ping_interval: 30s
status:
  port: 9090
match:
  code_retry_cap: 5
logging:
  level: debug
  format: console
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.WebSocket.Host)
	assert.Equal(t, 4001, cfg.WebSocket.Port)
	assert.Equal(t, 30*time.Second, cfg.WebSocket.PingInterval)
	assert.Equal(t, 9090, cfg.Status.Port)
	assert.Equal(t, 5, cfg.Match.CodeRetryCap)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

// TestLoadFromFile_DefaultsApplied verifies that unset keys fall back to the
// documented defaults.
func TestLoadFromFile_DefaultsApplied(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.WebSocket.Port)
	assert.Equal(t, 64, cfg.WebSocket.SendQueueSize)
	assert.Equal(t, 54*time.Second, cfg.WebSocket.PingInterval)
	assert.Equal(t, 10, cfg.Match.CodeRetryCap)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
