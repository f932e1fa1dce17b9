// Package config loads scan settings from defaults, an optional YAML
// file and RTSPBRUTE_ environment variables, in that precedence order.
// Command line flags are applied on top by the caller.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "RTSPBRUTE_"

// Config is the merged scan configuration.
type Config struct {
	Targets       []string      `koanf:"targets"`
	Usernames     string        `koanf:"usernames"`
	Passwords     string        `koanf:"passwords"`
	Defaults      bool          `koanf:"defaults"`
	Concurrency   int           `koanf:"concurrency"`
	Timeout       time.Duration `koanf:"timeout"`
	Rate          int           `koanf:"rate"`
	StopOnSuccess bool          `koanf:"stop_on_success"`
	Proxy         string        `koanf:"proxy"`
	ProxyAuth     string        `koanf:"proxy_auth"`
	Output        string        `koanf:"output"`
	JSON          bool          `koanf:"json"`
	Quiet         bool          `koanf:"quiet"`
	Debug         bool          `koanf:"debug"`
	Verbose       bool          `koanf:"verbose"`
}

// Load builds a Config. configPath may be empty; a named file that
// does not exist or does not parse is an error.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"concurrency": 100,
		"timeout":     "10s",
		"rate":        0,
	}
	if err := k.Load(confmap.Provider(defaults, ""), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// RTSPBRUTE_STOP_ON_SUCCESS=true maps to stop_on_success
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges. It runs again in main after flag overrides.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("invalid concurrency: %d (must be a positive number)", c.Concurrency)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %v (must be a positive duration)", c.Timeout)
	}
	if c.Rate < 0 {
		return fmt.Errorf("invalid rate: %d (must not be negative)", c.Rate)
	}
	if c.Quiet && c.Debug {
		return fmt.Errorf("quiet and debug modes are mutually exclusive")
	}
	return nil
}
