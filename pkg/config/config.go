package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/utmptrace/pkg/codec"
)

// Config represents the utmptrace configuration
type Config struct {
	Targets    []string   `yaml:"targets" validate:"dive,required"`
	Conditions []string   `yaml:"conditions,omitempty"`
	Count      int        `yaml:"count" validate:"gte=0"`
	Thresholds Thresholds `yaml:"thresholds"`
	Write      Write      `yaml:"write"`
	Archive    Archive    `yaml:"archive"`
	Metrics    Metrics    `yaml:"metrics"`
	Output     Output     `yaml:"output"`
	Logging    Logging    `yaml:"logging"`
}

// Thresholds are the file sizes above which a size warning is logged
type Thresholds struct {
	LargeBytes    int64 `yaml:"large_bytes" validate:"gte=0"`
	TooLargeBytes int64 `yaml:"too_large_bytes" validate:"gte=0"`
}

// Write controls how a file is replaced after deletion
type Write struct {
	InPlace bool `yaml:"in_place"`
}

// Archive controls the store of removed records
type Archive struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir" validate:"required_if=Enabled true"`
}

// Metrics controls the Prometheus textfile export
type Metrics struct {
	Textfile string `yaml:"textfile"`
}

// Output selects how matched entries are printed
type Output struct {
	Format string `yaml:"format" validate:"oneof=table json"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// DefaultTargets are scanned when no target is configured
var DefaultTargets = []string{
	"/run/utmp",
	"/var/log/wtmp",
	"/var/log/btmp",
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Targets: append([]string(nil), DefaultTargets...),
		Count:   5,
		Thresholds: Thresholds{
			LargeBytes:    codec.RecordSize * 500,
			TooLargeBytes: codec.RecordSize * 5000,
		},
		Archive: Archive{
			Enabled: false,
			Dir:     defaultArchiveDir(),
		},
		Output: Output{
			Format: "table",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
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

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./utmptrace.yaml"
	}

	// For Linux/macOS, use ~/.config/utmptrace/config.yaml
	configDir := filepath.Join(homeDir, ".config", "utmptrace")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}

func defaultArchiveDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./utmptrace-archive"
	}
	return filepath.Join(homeDir, ".local", "share", "utmptrace", "archive")
}
