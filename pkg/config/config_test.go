package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, []string{"/run/utmp", "/var/log/wtmp", "/var/log/btmp"}, config.Targets)
	assert.Equal(t, 5, config.Count)
	assert.Equal(t, int64(384*500), config.Thresholds.LargeBytes)
	assert.Equal(t, int64(384*5000), config.Thresholds.TooLargeBytes)
	assert.False(t, config.Archive.Enabled)
	assert.NotEmpty(t, config.Archive.Dir)
	assert.Equal(t, "table", config.Output.Format)
	assert.Equal(t, "info", config.Logging.Level)
	assert.NoError(t, config.Validate())

	config.Targets[0] = "changed"
	assert.Equal(t, "/run/utmp", DefaultTargets[0])
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unbounded count", func(c *Config) { c.Count = 0 }, false},
		{"negative count", func(c *Config) { c.Count = -1 }, true},
		{"json output", func(c *Config) { c.Output.Format = "json" }, false},
		{"unknown output", func(c *Config) { c.Output.Format = "xml" }, true},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }, true},
		{"blank target", func(c *Config) { c.Targets = []string{""} }, true},
		{"archive without dir", func(c *Config) { c.Archive = Archive{Enabled: true} }, true},
		{"negative threshold", func(c *Config) { c.Thresholds.LargeBytes = -5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("load existing config", func(t *testing.T) {
		tmpDir, err := os.MkdirTemp("", "utmptrace_config_test")
		require.NoError(t, err)
		defer os.RemoveAll(tmpDir)

		configPath := filepath.Join(tmpDir, "config.yaml")
		expectedConfig := DefaultConfig()
		expectedConfig.Targets = []string{"/var/log/wtmp*"}
		expectedConfig.Count = 10
		expectedConfig.Archive = Archive{Enabled: true, Dir: filepath.Join(tmpDir, "archive")}
		expectedConfig.Metrics.Textfile = filepath.Join(tmpDir, "utmptrace.prom")
		expectedConfig.Logging.Level = "debug"

		err = SaveConfig(expectedConfig, configPath)
		require.NoError(t, err)

		loadedConfig, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, expectedConfig, loadedConfig)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("count: 2\noutput:\n  format: json\n"), 0600))

		loaded, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Count)
		assert.Equal(t, "json", loaded.Output.Format)
		assert.Equal(t, DefaultTargets, loaded.Targets)
		assert.Equal(t, "info", loaded.Logging.Level)
	})

	t.Run("config file does not exist", func(t *testing.T) {
		_, err := LoadConfig("/non/existent/config.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("count: [not an int"), 0600))

		_, err := LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("invalid values", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("logging:\n  level: loud\n"), 0600))

		_, err := LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
	})
}

func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	require.NoError(t, SaveConfig(DefaultConfig(), configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Contains(t, raw, "targets")
	assert.Contains(t, raw, "thresholds")
	assert.Equal(t, 5, raw["count"])
}

func TestConfigExists(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	assert.False(t, ConfigExists(configPath))

	require.NoError(t, os.WriteFile(configPath, []byte("count: 1\n"), 0600))
	assert.True(t, ConfigExists(configPath))
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	assert.Equal(t, "config.yaml", filepath.Base(path))
}
