package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/ragchat"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "ragchat version "+strings.TrimSpace(ragchat.Version)+"\n", out.String())
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragchat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://file:8000\ntimeout: 40s\nlegacy: true\n"), 0o600))

	cmd := &cobra.Command{Use: "probe", RunE: func(*cobra.Command, []string) error { return nil }}
	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().AddFlagSet(rootCmd.PersistentFlags())
	root.AddCommand(cmd)
	root.SetArgs([]string{"probe", "--config", path, "--base-url", "http://flag:9000", "--no-color"})
	require.NoError(t, root.Execute())

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://flag:9000", cfg.BaseURL)
	assert.Equal(t, 40*time.Second, cfg.Timeout, "unset flags keep the file value")
	assert.True(t, cfg.Legacy)
	assert.True(t, cfg.NoColor)
}
