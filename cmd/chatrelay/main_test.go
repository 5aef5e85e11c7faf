// ABOUTME: Tests for the chatrelay command helpers
// ABOUTME: Covers config path resolution, logger setup, health URLs, hash-password, and init

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/chatrelay/internal/config"
)

func TestGetConfigPath(t *testing.T) {
	t.Setenv("CHATRELAY_CONFIG", "/etc/chatrelay.toml")
	assert.Equal(t, "/etc/chatrelay.toml", getConfigPath())

	t.Setenv("CHATRELAY_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, "/xdg/chatrelay/config.yaml", getConfigPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/relay")
	assert.Equal(t, "/home/relay/.config/chatrelay/config.yaml", getConfigPath())
}

func TestHealthURL(t *testing.T) {
	tests := map[string]string{
		":3001":          "http://localhost:3001/health",
		"0.0.0.0:8080":   "http://localhost:8080/health",
		"127.0.0.1:9000": "http://127.0.0.1:9000/health",
		"[::]:3001":      "http://localhost:3001/health",
		"relay.internal": "http://relay.internal/health",
	}
	for addr, want := range tests {
		assert.Equal(t, want, healthURL(addr), addr)
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestSetupLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.With("component", "test").Warn("shown", "thread_id", "t1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "test", rec["component"])
	assert.Equal(t, "t1", rec["thread_id"])
}

func TestSetupLogger_Color(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "debug"}, &buf)

	logger.With("component", "gateway").WithGroup("req").Debug("hello", "path", "/chat")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "component=")
	assert.Contains(t, out, "gateway")
	assert.Contains(t, out, "req.path=")
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestRunHashPassword(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runHashPassword([]string{"s3cret"}, strings.NewReader(""), &out))
	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	out.Reset()
	require.NoError(t, runHashPassword(nil, strings.NewReader("from-stdin\n"), &out))
	hash = strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("from-stdin")))

	assert.Error(t, runHashPassword(nil, strings.NewReader(""), &out))
	assert.Error(t, runHashPassword([]string{"a", "b"}, strings.NewReader(""), &out))
}

func TestRunInit_WritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LOG_PASSWORD", "pw")

	answers := strings.Join([]string{
		path,                // config path
		"127.0.0.1:4000",    // http addr
		"asst_123",          // assistant id
		"smtp.example.com",  // smtp host
		"2525",              // smtp port
		"bot@example.com",   // from
		"sales@example.com", // to
		"admin",             // viewer username
		"memory",            // backend
		"debug",             // log level
		"json",              // log format
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, runInit(strings.NewReader(answers), &out))
	assert.Contains(t, out.String(), "Config written to "+path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4000", cfg.Server.HTTPAddr)
	assert.Equal(t, "sk-test", cfg.Assistant.APIKey)
	assert.Equal(t, "asst_123", cfg.Assistant.AssistantID)
	assert.Equal(t, 2525, cfg.Mail.Port)
	assert.Equal(t, "sales@example.com", cfg.Mail.To)
	assert.True(t, cfg.Viewer.Enabled())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestRunInit_KeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0600))

	var out bytes.Buffer
	require.NoError(t, runInit(strings.NewReader(path+"\nno\n"), &out))
	assert.Contains(t, out.String(), "Aborted.")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}
