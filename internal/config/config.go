// Package config loads mailib server settings from flags, the environment,
// an optional .env file and an optional YAML file.
package config

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	Server    ServerConfig
	Auth      AuthConfig
	Fantlab   FantlabConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds on-disk locations. Every path defaults to a child of DataPath.
type StorageConfig struct {
	DataPath     string
	DatabasePath string // {data}/mailib.db
	CachePath    string // {data}/cache
	SearchPath   string // {data}/search
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	// TokenKey is the PASETO v4 local key. Empty means load or generate {data}/auth.key.
	TokenKey            []byte
	Issuer              string
	Audience            string
	AccessTokenDuration time.Duration
}

// FantlabConfig holds settings for the upstream catalog client.
type FantlabConfig struct {
	BaseURL  string
	RPS      float64
	Burst    int
	Timeout  time.Duration
	CacheTTL time.Duration
}

// RateLimitConfig bounds inbound search requests per user.
type RateLimitConfig struct {
	SearchRPS   float64
	SearchBurst int
}

// LoadConfig reads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. YAML file named by -config or MAILIB_CONFIG.
// 5. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("mailib", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the database, cache and search index")
	configFile := fs.String("config", "", "Path to a YAML config file")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed origins")

	tokenKey := fs.String("token-key", "", "Hex encoded 32 byte PASETO key")
	fantlabURL := fs.String("fantlab-url", "", "Fantlab API base URL")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	l := &loader{}
	if path := getConfigValue(*configFile, "MAILIB_CONFIG", ""); path != "" {
		file, err := loadYAMLFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
		l.file = file
	}

	cfg := &Config{
		App: AppConfig{
			Environment: l.value(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: l.value(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath:     l.value(*dataPath, "DATA_PATH", ""),
			DatabasePath: l.value("", "DATABASE_PATH", ""),
			CachePath:    l.value("", "CACHE_PATH", ""),
			SearchPath:   l.value("", "SEARCH_PATH", ""),
		},
		Server: ServerConfig{
			Port:        l.value(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(l.value(*corsOrigins, "SERVER_CORS_ORIGINS", "*")),
		},
		Auth: AuthConfig{
			Issuer:   l.value("", "AUTH_ISSUER", "mailib"),
			Audience: l.value("", "AUTH_AUDIENCE", "mailib-api"),
		},
		Fantlab: FantlabConfig{
			BaseURL: strings.TrimRight(l.value(*fantlabURL, "FANTLAB_BASE_URL", "https://api.fantlab.ru"), "/"),
			Burst:   l.intValue("", "FANTLAB_BURST", 5),
		},
		RateLimit: RateLimitConfig{
			SearchBurst: l.intValue("", "RATE_LIMIT_SEARCH_BURST", 10),
		},
	}

	var err error
	if cfg.Fantlab.RPS, err = l.floatValue("", "FANTLAB_RPS", 5); err != nil {
		return nil, err
	}
	if cfg.RateLimit.SearchRPS, err = l.floatValue("", "RATE_LIMIT_SEARCH_RPS", 2); err != nil {
		return nil, err
	}

	durations := []struct {
		dst  *time.Duration
		flag string
		key  string
		def  string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "30s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Auth.AccessTokenDuration, "", "AUTH_ACCESS_TOKEN_DURATION", "24h"},
		{&cfg.Fantlab.Timeout, "", "FANTLAB_TIMEOUT", "10s"},
		{&cfg.Fantlab.CacheTTL, "", "FANTLAB_CACHE_TTL", "168h"},
	}
	for _, d := range durations {
		raw := l.value(d.flag, d.key, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.key), raw, err)
		}
		*d.dst = parsed
	}

	if keyHex := l.value(*tokenKey, "AUTH_TOKEN_KEY", ""); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid auth token key: not valid hex: %w", err)
		}
		cfg.Auth.TokenKey = key
	}

	if err := cfg.expandStoragePaths(); err != nil {
		return nil, fmt.Errorf("invalid storage path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Auth.TokenKey != nil && len(c.Auth.TokenKey) != 32 {
		return fmt.Errorf("auth token key must be 32 bytes, got %d", len(c.Auth.TokenKey))
	}

	if c.Fantlab.RPS <= 0 || c.Fantlab.Burst <= 0 {
		return errors.New("fantlab rate limit must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandStoragePaths resolves the data directory and derives unset children from it.
func (c *Config) expandStoragePaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	data, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, ".mailib"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = data

	children := []struct {
		dst  *string
		name string
	}{
		{&c.Storage.DatabasePath, "mailib.db"},
		{&c.Storage.CachePath, "cache"},
		{&c.Storage.SearchPath, "search"},
	}
	for _, child := range children {
		expanded, err := expandPath(*child.dst, filepath.Join(data, child.name))
		if err != nil {
			return err
		}
		*child.dst = expanded
	}
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// loader layers the YAML file values between the environment and defaults.
type loader struct {
	file map[string]string
}

func (l *loader) value(flagValue, envKey, defaultValue string) string {
	fallback := defaultValue
	if v, ok := l.file[envKey]; ok && v != "" {
		fallback = v
	}
	return getConfigValue(flagValue, envKey, fallback)
}

func (l *loader) intValue(flagValue, envKey string, defaultValue int) int {
	raw := l.value(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}

func (l *loader) floatValue(flagValue, envKey string, defaultValue float64) (float64, error) {
	raw := l.value(flagValue, envKey, "")
	if raw == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), raw, err)
	}
	return f, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
