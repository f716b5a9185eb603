package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingPassword is returned by ValidateServer when the console would
// start without any way to authenticate.
var ErrMissingPassword = errors.New("web.admin_password_hash is required unless web.auth_disabled is set")

// Config holds all configuration for the console binaries.
type Config struct {
	Web       WebConfig       `mapstructure:"web"`
	Log       LogConfig       `mapstructure:"log"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Console   ConsoleConfig   `mapstructure:"console"`
}

// WebConfig configures the HTTP server.
type WebConfig struct {
	Port              string `mapstructure:"port"`
	AdminUsername     string `mapstructure:"admin_username"`
	AdminPasswordHash string `mapstructure:"admin_password_hash"` // bcrypt
	APIToken          string `mapstructure:"api_token"`
	AuthDisabled      bool   `mapstructure:"auth_disabled"`
}

// LogConfig configures slog and the log panel.
type LogConfig struct {
	Level      string `mapstructure:"level"` // DEBUG, INFO, WARN, ERROR
	MaxEntries int    `mapstructure:"max_entries"`
	PanelSize  int    `mapstructure:"panel_size"`
}

// InventoryConfig points at the YAML file of devices known at startup.
type InventoryConfig struct {
	Path string `mapstructure:"path"`
}

// ConsoleConfig is used by the terminal console to reach a running server.
type ConsoleConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

// Load reads configuration from an optional YAML file and the environment.
// Env overrides use the prefix COHERENCE_, e.g. COHERENCE_WEB_PORT.
// COHERENCE_CONFIG names the file; otherwise ./coherence.yaml and
// /etc/coherence/coherence.yaml are tried.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("web.port", "8080")
	v.SetDefault("web.admin_username", "admin")
	v.SetDefault("web.admin_password_hash", "")
	v.SetDefault("web.api_token", "")
	v.SetDefault("web.auth_disabled", false)
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.max_entries", 500)
	v.SetDefault("log.panel_size", 200)
	v.SetDefault("inventory.path", "")
	v.SetDefault("console.url", "http://localhost:8080")
	v.SetDefault("console.token", "")

	v.SetConfigType("yaml")
	if path := os.Getenv("COHERENCE_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("coherence")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/coherence")
	}

	v.SetEnvPrefix("COHERENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// ValidateServer checks the settings the web console cannot run without.
func (c *Config) ValidateServer() error {
	if c.Web.Port == "" {
		return fmt.Errorf("web.port is required")
	}
	if !c.Web.AuthDisabled && c.Web.AdminPasswordHash == "" {
		return ErrMissingPassword
	}
	return nil
}
