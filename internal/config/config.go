// Package config loads lpkg settings with viper. Values come from defaults,
// then an optional TOML file, then LPKG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"martianoff/lispkg/internal/namespace"
)

const (
	// AppName is the application name.
	AppName = "lpkg"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "lpkg"
	// EnvPrefix prefixes every environment override, e.g. LPKG_LOG_LEVEL.
	EnvPrefix = "LPKG"
)

// Recovery policies for continuable errors.
const (
	OnContinuableContinue = "continue"
	OnContinuableAbort    = "abort"
)

// Config is the complete lpkg configuration.
type Config struct {
	Registry RegistryConfig `mapstructure:"registry"`
	Log      LogConfig      `mapstructure:"log"`
}

// RegistryConfig configures a namespace.Registry.
type RegistryConfig struct {
	ExternalSize  int    `mapstructure:"external_size"`
	InternalSize  int    `mapstructure:"internal_size"`
	MaxRetries    int    `mapstructure:"max_retries"`
	OnContinuable string `mapstructure:"on_continuable"`
	UserPackage   bool   `mapstructure:"user_package"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	opts := namespace.DefaultOptions()
	return &Config{
		Registry: RegistryConfig{
			ExternalSize:  opts.ExternalSize,
			InternalSize:  opts.InternalSize,
			MaxRetries:    opts.MaxRetries,
			OnContinuable: OnContinuableContinue,
			UserPackage:   opts.UserPackage,
		},
		Log: LogConfig{Level: "warn"},
	}
}

// Load reads the configuration. An explicit path must exist; without one,
// lpkg.toml in the working directory is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("registry.external_size", defaults.Registry.ExternalSize)
	v.SetDefault("registry.internal_size", defaults.Registry.InternalSize)
	v.SetDefault("registry.max_retries", defaults.Registry.MaxRetries)
	v.SetDefault("registry.on_continuable", defaults.Registry.OnContinuable)
	v.SetDefault("registry.user_package", defaults.Registry.UserPackage)
	v.SetDefault("log.level", defaults.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values a registry cannot run with.
func (c *Config) Validate() error {
	if c.Registry.ExternalSize <= 0 || c.Registry.InternalSize <= 0 {
		return fmt.Errorf("registry table sizes must be positive, got %d and %d",
			c.Registry.ExternalSize, c.Registry.InternalSize)
	}
	if c.Registry.MaxRetries < 1 {
		return fmt.Errorf("registry.max_retries must be at least 1, got %d", c.Registry.MaxRetries)
	}
	switch c.Registry.OnContinuable {
	case OnContinuableContinue, OnContinuableAbort:
	default:
		return fmt.Errorf("registry.on_continuable must be %q or %q, got %q",
			OnContinuableContinue, OnContinuableAbort, c.Registry.OnContinuable)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.WarnLevel
	}
	return level
}

// Options converts the registry settings into namespace.Options.
func (c *Config) Options(logger *log.Logger) namespace.Options {
	opts := namespace.DefaultOptions()
	opts.ExternalSize = c.Registry.ExternalSize
	opts.InternalSize = c.Registry.InternalSize
	opts.MaxRetries = c.Registry.MaxRetries
	opts.UserPackage = c.Registry.UserPackage
	opts.Logger = logger
	if c.Registry.OnContinuable == OnContinuableAbort {
		opts.Handler = namespace.AbortHandler
	} else {
		opts.Handler = namespace.ContinueHandler
	}
	return opts
}
