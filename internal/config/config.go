// Package config loads runtime settings from YAML with environment overrides
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rezonia/zugferd/internal/model"
	"github.com/rezonia/zugferd/internal/profile"
)

// Environment variables read by Load
const (
	EnvProfile    = "ZUGFERD_PROFILE"
	EnvLogLevel   = "ZUGFERD_LOG_LEVEL"
	EnvXSDDir     = "ZUGFERD_XSD_DIR"
	EnvKositJar   = "ZUGFERD_KOSIT_JAR"
	EnvScenarios  = "ZUGFERD_KOSIT_SCENARIOS"
	EnvAddress    = "ZUGFERD_ADDRESS"
	EnvServerMode = "ZUGFERD_DEBUG"
	EnvTotals     = "ZUGFERD_CHECK_TOTALS"
)

// Config holds every setting of the CLI and the HTTP adapter
type Config struct {
	Profile  string       `yaml:"profile"`
	LogLevel string       `yaml:"log_level"`
	XSD      XSDConfig    `yaml:"xsd"`
	Kosit    KositConfig  `yaml:"kosit"`
	Server   ServerConfig `yaml:"server"`
	Totals   bool         `yaml:"check_totals"`
}

// XSDConfig configures the schema validator
type XSDConfig struct {
	Dir       string `yaml:"dir"`
	CacheSize int    `yaml:"cache_size"`
}

// Enabled reports whether schema assets are configured
func (c XSDConfig) Enabled() bool {
	return c.Dir != ""
}

// KositConfig configures the business rule validator
type KositConfig struct {
	Java       string        `yaml:"java"`
	Jar        string        `yaml:"jar"`
	Scenarios  string        `yaml:"scenarios"`
	Repository string        `yaml:"repository"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Enabled reports whether the validator jar is configured
func (c KositConfig) Enabled() bool {
	return c.Jar != ""
}

// ServerConfig configures the HTTP adapter
type ServerConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	Debug        bool          `yaml:"debug"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Profile:  profile.EN16931,
		LogLevel: "info",
		XSD: XSDConfig{
			CacheSize: 8,
		},
		Kosit: KositConfig{
			Timeout: 2 * time.Minute,
		},
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}
}

// Load reads path on top of the defaults and applies environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, model.NewConfigError("config", "cannot read "+path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, model.NewConfigError("config", "cannot parse "+path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	overrides := []struct {
		env    string
		target *string
	}{
		{EnvProfile, &c.Profile},
		{EnvLogLevel, &c.LogLevel},
		{EnvXSDDir, &c.XSD.Dir},
		{EnvKositJar, &c.Kosit.Jar},
		{EnvScenarios, &c.Kosit.Scenarios},
		{EnvAddress, &c.Server.Address},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok && v != "" {
			*o.target = v
		}
	}

	if v, ok := os.LookupEnv(EnvServerMode); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return model.NewConfigError("config", fmt.Sprintf("%s must be a boolean", EnvServerMode), err)
		}
		c.Server.Debug = debug
	}

	if v, ok := os.LookupEnv(EnvTotals); ok && v != "" {
		check, err := strconv.ParseBool(v)
		if err != nil {
			return model.NewConfigError("config", fmt.Sprintf("%s must be a boolean", EnvTotals), err)
		}
		c.Totals = check
	}
	return nil
}

// Validate rejects settings the application cannot start with
func (c *Config) Validate() error {
	if _, err := profile.Lookup(c.Profile); err != nil {
		return model.NewConfigError("config", "invalid default profile", err)
	}
	if c.XSD.CacheSize <= 0 {
		return model.NewConfigError("config", fmt.Sprintf("xsd.cache_size must be positive, got %d", c.XSD.CacheSize), nil)
	}
	if c.Kosit.Enabled() && c.Kosit.Scenarios == "" {
		return model.NewConfigError("config", "kosit.scenarios is required when kosit.jar is set", nil)
	}
	if c.Kosit.Timeout < 0 {
		return model.NewConfigError("config", "kosit.timeout must not be negative", nil)
	}
	return nil
}
