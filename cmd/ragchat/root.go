package main

import (
	"fmt"
	"os"

	"github.com/aretw0/ragchat/internal/cli"
	"github.com/aretw0/ragchat/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "ragchat is a terminal client for a retrieval-augmented chat assistant",
	Long: `ragchat talks to a RAG agent backend: it streams answers with live pipeline
progress, renders them as markdown and manages the indexed documents.

Running ragchat without a subcommand starts the interactive chat.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runChat,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	defaults := config.Default()
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./"+config.DefaultFile+" if present)")
	flags.String("base-url", defaults.BaseURL, "Backend base URL")
	flags.Duration("timeout", defaults.Timeout, "Timeout for requests and stream setup")
	flags.Duration("idle-timeout", defaults.IdleTimeout, "Give up on a query after this long without events (0 disables)")
	flags.Int("max-input-size", defaults.MaxInputSize, "Maximum query size in bytes")
	flags.Bool("legacy", false, "Use the single-response POST endpoint instead of the stream")
	flags.String("redis-url", "", "Redis URL for a session lock shared between processes")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	flags.Bool("debug", false, "Enable debug logging to stderr")
	flags.Bool("json", false, "Emit JSON instead of rendered text")
	flags.Bool("no-color", false, "Disable colors and styling")
}

// loadConfig resolves defaults, the config file, the environment and then
// every flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if flags.Changed("base-url") {
		cfg.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("idle-timeout") {
		cfg.IdleTimeout, _ = flags.GetDuration("idle-timeout")
	}
	if flags.Changed("max-input-size") {
		cfg.MaxInputSize, _ = flags.GetInt("max-input-size")
	}
	if flags.Changed("legacy") {
		cfg.Legacy, _ = flags.GetBool("legacy")
	}
	if flags.Changed("redis-url") {
		cfg.RedisURL, _ = flags.GetString("redis-url")
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("json") {
		cfg.JSON, _ = flags.GetBool("json")
	}
	if flags.Changed("no-color") {
		cfg.NoColor, _ = flags.GetBool("no-color")
	}
	return cfg, cfg.Validate()
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext(cmd *cobra.Command) *cli.SignalContext {
	return cli.NewSignalContext(cmd.Context())
}
