// Package config handles the optional vitals configuration file. vitals
// runs fine without one; the file and VITALS_ environment variables just
// override the built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/vitals/internal/errors"
)

const (
	// ConfigFileName is the default config file name in the home directory.
	ConfigFileName = ".vitals.yaml"

	// MinInterval is the floor for the refresh interval. Anything shorter
	// burns CPU re-reading procfs for deltas too small to display.
	MinInterval = 100 * time.Millisecond
)

// Config holds the dashboard settings.
type Config struct {
	// Interval is the polling interval between collection cycles.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// GPU enables GPU monitoring. When false no backend is probed at all.
	GPU bool `yaml:"gpu" mapstructure:"gpu"`

	// HistorySize is the number of samples retained for sparklines.
	HistorySize int `yaml:"history_size" mapstructure:"history_size"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Interval:    time.Second,
		GPU:         true,
		HistorySize: 60,
	}
}

// DefaultPath returns the default config file location (~/.vitals.yaml),
// or empty string when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ConfigFileName)
}

// Load reads config from path, merging the file over the defaults and
// VITALS_ environment variables over both. A missing file is not an
// error; the defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VITALS")
	v.AutomaticEnv()
	v.SetDefault("interval", "1s")
	v.SetDefault("gpu", true)
	v.SetDefault("history_size", 60)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Failed to read config file",
					"Check that "+path+" is valid YAML")
			}
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks config values against their allowed ranges.
func Validate(cfg *Config) error {
	if cfg.Interval < MinInterval {
		return errors.New(errors.ErrConfig,
			"Interval too short",
			"Minimum interval is 100ms")
	}
	if cfg.HistorySize <= 0 {
		return errors.New(errors.ErrConfig,
			"History size must be positive",
			"Use a value between 1 and 3600")
	}
	return nil
}

// fileConfig is the YAML shape written to disk. The interval is stored as
// a duration string ("1s", "500ms") rather than raw nanoseconds.
type fileConfig struct {
	Interval    string `yaml:"interval"`
	GPU         bool   `yaml:"gpu"`
	HistorySize int    `yaml:"history_size"`
}

// Save writes the config as YAML to path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(fileConfig{
		Interval:    cfg.Interval.String(),
		GPU:         cfg.GPU,
		HistorySize: cfg.HistorySize,
	})
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode config", "")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write "+path,
			"Check directory permissions")
	}
	return nil
}
