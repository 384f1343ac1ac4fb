package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{DataPath: "/some/path"},
		Fantlab: FantlabConfig{RPS: 5, Burst: 5},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"WARN", true},
		{"error", true},
		{"trace", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_TokenKeyLength(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.TokenKey = []byte("short")

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")

	cfg.Auth.TokenKey = make([]byte, 32)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.DataPath = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data path cannot be empty")
}

func TestExpandStoragePaths_DerivesChildren(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{DataPath: "/srv/mailib"}}

	require.NoError(t, cfg.expandStoragePaths())

	assert.Equal(t, "/srv/mailib", cfg.Storage.DataPath)
	assert.Equal(t, "/srv/mailib/mailib.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "/srv/mailib/cache", cfg.Storage.CachePath)
	assert.Equal(t, "/srv/mailib/search", cfg.Storage.SearchPath)
}

func TestExpandStoragePaths_EmptyUsesHome(t *testing.T) {
	cfg := &Config{}

	require.NoError(t, cfg.expandStoragePaths())

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, ".mailib"), cfg.Storage.DataPath)
}

func TestExpandStoragePaths_TildeExpansion(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{DataPath: "~/books", SearchPath: "/tmp/idx"}}

	require.NoError(t, cfg.expandStoragePaths())

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, "books"), cfg.Storage.DataPath)
	assert.Equal(t, "/tmp/idx", cfg.Storage.SearchPath)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	assert.Equal(t, "flag-value", getConfigValue("flag-value", "ENV_KEY", "default-value"))

	t.Setenv("TEST_ENV_KEY", "env-value")
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))

	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY", "default-value"))
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load([]string{"-data-path", dir, "-env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "https://api.fantlab.ru", cfg.Fantlab.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Fantlab.Timeout)
	assert.Equal(t, 168*time.Hour, cfg.Fantlab.CacheTTL)
	assert.InDelta(t, 5.0, cfg.Fantlab.RPS, 0.001)
	assert.Equal(t, filepath.Join(dir, "mailib.db"), cfg.Storage.DatabasePath)
	assert.Nil(t, cfg.Auth.TokenKey)
}

func TestLoad_YAMLFileBelowEnvironment(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "mailib.yml")
	content := `
server:
  port: 9090
  cors_origins: [http://a.test, http://b.test]
fantlab:
  base_url: http://fantlab.local/
  rps: 1.5
log_level: debug
`
	require.NoError(t, os.WriteFile(yamlPath, []byte(content), 0o600))
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load([]string{"-config", yamlPath, "-data-path", dir, "-env-file", filepath.Join(dir, "none")})
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "http://fantlab.local", cfg.Fantlab.BaseURL)
	assert.InDelta(t, 1.5, cfg.Fantlab.RPS, 0.001)
	assert.Equal(t, "warn", cfg.Logger.Level, "environment overrides the YAML file")
}

func TestLoad_FlagOverridesEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SERVER_PORT", "7000")

	cfg, err := Load([]string{"-port", "7100", "-data-path", dir, "-env-file", filepath.Join(dir, "none")})
	require.NoError(t, err)
	assert.Equal(t, "7100", cfg.Server.Port)
}

func TestLoad_TokenKey(t *testing.T) {
	dir := t.TempDir()
	key := strings.Repeat("ab", 32)

	cfg, err := Load([]string{"-token-key", key, "-data-path", dir, "-env-file", filepath.Join(dir, "none")})
	require.NoError(t, err)
	assert.Len(t, cfg.Auth.TokenKey, 32)

	_, err = Load([]string{"-token-key", "zz", "-data-path", dir, "-env-file", filepath.Join(dir, "none")})
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FANTLAB_TIMEOUT", "soon")

	_, err := Load([]string{"-data-path", dir, "-env-file", filepath.Join(dir, "none")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fantlab_timeout")
}
