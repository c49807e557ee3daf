// Package config loads the engine-level configuration a host process
// uses to construct a pkg/offsetlog.Log: data directory, offset
// width, fsync cadence, buffer sizing, and whether to run an integrity
// check on open. It deliberately does not grow into an application
// config (ports, bind addresses, API keys) — the core has no CLI or
// RPC surface to configure.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/huginn/pkg/codec"
	"github.com/ssargent/huginn/pkg/offsetlog"
)

// Config holds the on-disk, YAML-serializable settings for an offset
// log instance.
type Config struct {
	DataDir              string        `yaml:"data_dir"`
	LogFile              string        `yaml:"log_file"`
	OffsetWidth          int           `yaml:"offset_width"`
	FsyncInterval        time.Duration `yaml:"fsync_interval"`
	BufferSize           int           `yaml:"buffer_size"`
	ReadWindowSize       int           `yaml:"read_window_size"`
	IntegrityCheckOnOpen bool          `yaml:"integrity_check_on_open"`
}

// DefaultConfig returns a configuration suitable for local development:
// width-4 offsets, a 64KiB read window, and synchronous fsync on every
// append (FsyncInterval == 0).
func DefaultConfig() *Config {
	return &Config{
		DataDir:              "./data",
		LogFile:              "offsets.log",
		OffsetWidth:          4,
		FsyncInterval:        0,
		BufferSize:           64 * 1024,
		ReadWindowSize:       64 * 1024,
		IntegrityCheckOnOpen: false,
	}
}

// Path returns the full path to the configured log file.
func (c *Config) Path() string {
	return filepath.Join(c.DataDir, c.LogFile)
}

// Width translates OffsetWidth into a codec.Width, validating that it
// is one of the two supported values.
func (c *Config) Width() (codec.Width, error) {
	switch c.OffsetWidth {
	case 4:
		return codec.Width4, nil
	case 8:
		return codec.Width8, nil
	default:
		return 0, fmt.Errorf("config: offset_width must be 4 or 8, got %d", c.OffsetWidth)
	}
}

// Options translates this Config into the functional options
// offsetlog.Open expects: OffsetWidth, ReadWindowSize and
// IntegrityCheckOnOpen. FsyncInterval and BufferSize are not translated
// and have no effect on the log, which fsyncs after every Append and
// AppendBatch.
func (c *Config) Options() ([]offsetlog.Option, error) {
	width, err := c.Width()
	if err != nil {
		return nil, err
	}

	opts := []offsetlog.Option{
		offsetlog.WithWidth(width),
	}
	if c.ReadWindowSize > 0 {
		opts = append(opts, offsetlog.WithReadWindow(c.ReadWindowSize))
	}
	if c.IntegrityCheckOnOpen {
		opts = append(opts, offsetlog.WithIntegrityCheckOnOpen())
	}
	return opts, nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig writes config to configPath as YAML, creating the parent
// directory if necessary.
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ConfigExists reports whether a configuration file exists at path.
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
