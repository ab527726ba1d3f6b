// Package config resolves the CLI configuration from defaults, an optional
// YAML file and RAGCHAT_* environment variables. Command-line flags are
// applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/aretw0/ragchat/pkg/controller"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "ragchat.yaml"

// DefaultBaseURL is where the backend listens in a stock deployment.
const DefaultBaseURL = "http://localhost:8000"

// DefaultTimeout bounds non-streaming requests and stream connection setup.
const DefaultTimeout = 30 * time.Second

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RAGCHAT_"

// Config is the resolved CLI configuration.
type Config struct {
	BaseURL      string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	MaxInputSize int           `mapstructure:"max_input_size" yaml:"max_input_size"`
	Legacy       bool          `mapstructure:"legacy" yaml:"legacy"`
	RedisURL     string        `mapstructure:"redis_url" yaml:"redis_url"`
	MetricsAddr  string        `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	Debug        bool          `mapstructure:"debug" yaml:"debug"`
	JSON         bool          `mapstructure:"json" yaml:"json"`
	NoColor      bool          `mapstructure:"no_color" yaml:"no_color"`
}

// envKeys maps environment variables (without prefix) to config keys.
var envKeys = map[string]string{
	"BASE_URL":       "base_url",
	"TIMEOUT":        "timeout",
	"IDLE_TIMEOUT":   "idle_timeout",
	"REDIS_URL":      "redis_url",
	"MAX_INPUT_SIZE": "max_input_size",
	"METRICS_ADDR":   "metrics_addr",
	"DEBUG":          "debug",
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		Timeout:      DefaultTimeout,
		IdleTimeout:  controller.DefaultIdleTimeout,
		MaxInputSize: controller.DefaultMaxInputSize,
	}
}

// Load resolves defaults, then the YAML file, then the environment.
// An empty path means DefaultFile if it exists; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	required := path != ""
	if path == "" {
		path = DefaultFile
	}
	if err := LoadFile(&cfg, path, required); err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadFile overlays the keys present in the YAML file at path onto cfg.
func LoadFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := decode(raw, cfg); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays RAGCHAT_* variables found through lookup onto cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	raw := map[string]any{}
	for env, key := range envKeys {
		if v, ok := lookup(EnvPrefix + env); ok && v != "" {
			raw[key] = v
		}
	}
	if len(raw) == 0 {
		return nil
	}
	if err := decode(raw, cfg); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	return nil
}

// decode applies raw onto cfg. Durations may be strings ("90s") and scalars
// are weakly typed so environment strings decode into ints and bools.
func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Validate checks the values a client cannot start without.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("idle_timeout must not be negative")
	}
	if c.MaxInputSize <= 0 {
		return fmt.Errorf("max_input_size must be positive")
	}
	return nil
}
