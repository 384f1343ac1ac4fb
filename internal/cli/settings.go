package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mailib/mailib-server/internal/config"
)

// Settings is the mailibctl configuration. Values come from
// ~/.config/mailibctl/config.yml, MAILIBCTL_* variables and flags.
type Settings struct {
	DataPath   string  `mapstructure:"data_path"`
	FantlabURL string  `mapstructure:"fantlab_url"`
	FantlabRPS float64 `mapstructure:"fantlab_rps"`
	TokenKey   string  `mapstructure:"token_key"`
	LogLevel   string  `mapstructure:"log_level"`
	Output     string  `mapstructure:"output"`
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mailibctl", "config.yml")
}

// LoadSettings reads the config file at path (DefaultPath when empty).
// A missing file is not an error.
func LoadSettings(v *viper.Viper, path string) (*Settings, error) {
	v.SetDefault("data_path", "~/.mailib")
	v.SetDefault("fantlab_url", "https://api.fantlab.ru")
	v.SetDefault("fantlab_rps", 5)
	v.SetDefault("token_key", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("output", outputText)

	v.SetEnvPrefix("MAILIBCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv("MAILIBCTL_CONFIG")
	}
	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &s, nil
}

// serverConfig turns the settings into the server configuration used to
// open the data directory in-process.
func (s *Settings) serverConfig() (*config.Config, error) {
	args := []string{
		"-env-file", os.DevNull,
		"-data-path", s.DataPath,
		"-fantlab-url", s.FantlabURL,
		"-log-level", s.LogLevel,
	}
	if s.TokenKey != "" {
		args = append(args, "-token-key", s.TokenKey)
	}

	cfg, err := config.Load(args)
	if err != nil {
		return nil, err
	}
	if s.FantlabRPS > 0 {
		cfg.Fantlab.RPS = s.FantlabRPS
	}
	return cfg, nil
}
