package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/ragchat/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ragchat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
base_url: http://rag.internal:9000
timeout: 90s
idle_timeout: 5m
max_input_size: 1024
legacy: true
no_color: true
`)
	cfg := config.Default()
	require.NoError(t, config.LoadFile(&cfg, path, true))

	assert.Equal(t, "http://rag.internal:9000", cfg.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, 1024, cfg.MaxInputSize)
	assert.True(t, cfg.Legacy)
	assert.True(t, cfg.NoColor)
	assert.False(t, cfg.Debug, "absent keys keep their value")
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "base_uri: http://x\n"},
		{"bad duration", "timeout: soon\n"},
		{"not yaml", "base_url: [unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			assert.Error(t, config.LoadFile(&cfg, writeFile(t, tt.content), true))
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg := config.Default()
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	assert.NoError(t, config.LoadFile(&cfg, missing, false))
	assert.Error(t, config.LoadFile(&cfg, missing, true))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"RAGCHAT_BASE_URL":       "https://rag.example.com",
		"RAGCHAT_TIMEOUT":        "15s",
		"RAGCHAT_MAX_INPUT_SIZE": "2048",
		"RAGCHAT_DEBUG":          "true",
		"RAGCHAT_REDIS_URL":      "redis://localhost:6379/0",
		"RAGCHAT_IGNORED":        "x",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := config.Default()
	require.NoError(t, config.ApplyEnv(&cfg, lookup))

	assert.Equal(t, "https://rag.example.com", cfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 2048, cfg.MaxInputSize)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestApplyEnv_Invalid(t *testing.T) {
	cfg := config.Default()
	err := config.ApplyEnv(&cfg, func(k string) (string, bool) {
		if k == "RAGCHAT_MAX_INPUT_SIZE" {
			return "lots", true
		}
		return "", false
	})
	assert.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "base_url: http://from-file:8000\ntimeout: 10s\n")
	t.Setenv("RAGCHAT_BASE_URL", "http://from-env:8000")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:8000", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, config.Default().IdleTimeout, cfg.IdleTimeout)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, config.Default().Validate())

	cfg := config.Default()
	cfg.BaseURL = "localhost:8000/api"
	assert.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.MaxInputSize = 0
	assert.Error(t, cfg.Validate())
}
