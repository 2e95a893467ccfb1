package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

//go:embed config.example.toml
var exampleConf []byte

// APIKeysEnv overrides [TranslateConfig.APIKeys] when set.
const APIKeysEnv = "TRANSX_API_KEYS"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Identity  IdentityConfig  `toml:"identity"`
	Database  DatabaseConfig  `toml:"database"`
	Translate TranslateConfig `toml:"translate"`
	Export    ExportConfig    `toml:"export"`
	Watch     WatchConfig     `toml:"watch"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ServerConfig points the client at the translation server.
type ServerConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"` // 0 disables the client timeout
}

// IdentityConfig controls the identity cookie.
type IdentityConfig struct {
	CookieName string `toml:"cookie_name"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// TranslateConfig holds defaults for range translation requests.
type TranslateConfig struct {
	APIKeys string `toml:"api_keys"`
	Prompt  string `toml:"prompt"`
}

// ExportConfig holds defaults for EPUB exports.
type ExportConfig struct {
	Author        string `toml:"author"`
	DefaultTitle  string `toml:"default_title"`
	OutputDir     string `toml:"output_dir"`
	OpenInBrowser bool   `toml:"open_in_browser"`
}

// WatchConfig controls status polling.
type WatchConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

// LoggingConfig controls log level and the TUI log file.
type LoggingConfig struct {
	Level      string `toml:"level"`
	TUILogPath string `toml:"tui_log_path"`
}

// Timeout returns the HTTP client timeout. Zero means requests never time out.
func (s ServerConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// MaxAge returns the identity lifetime.
func (i IdentityConfig) MaxAge() time.Duration {
	days := i.MaxAgeDays
	if days <= 0 {
		days = 365
	}
	return time.Duration(days) * 24 * time.Hour
}

// Interval returns the polling interval for status watching.
func (w WatchConfig) Interval() time.Duration {
	if w.IntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(w.IntervalSeconds) * time.Second
}

// LogLevel parses the configured level, falling back to info.
func (l LoggingConfig) LogLevel() log.Level {
	level, err := log.ParseLevel(strings.ToLower(l.Level))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Validate checks that required values are present.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		return fmt.Errorf("%w: server.base_url is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Identity.CookieName) == "" {
		return fmt.Errorf("%w: identity.cookie_name is required", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv overrides values from the environment.
func (c *Config) ApplyEnv() {
	if keys := os.Getenv(APIKeysEnv); keys != "" {
		c.Translate.APIKeys = keys
	}
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
