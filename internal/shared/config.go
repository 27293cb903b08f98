package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Every field can be overridden from the environment (see [LoadEnv]).
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig contains settings for the remote holiday-manager API.
type APIConfig struct {
	BaseURL   string  `toml:"base_url" env:"HMX_API_BASE_URL"`
	RateLimit float64 `toml:"rate_limit" env:"HMX_API_RATE_LIMIT"`
	Burst     int     `toml:"burst" env:"HMX_API_BURST"`
}

// StorageConfig contains local persistence settings.
type StorageConfig struct {
	Path         string `toml:"path" env:"HMX_STORAGE_PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"HMX_STORAGE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"HMX_STORAGE_MAX_IDLE_CONNS"`
	SessionKey   string `toml:"session_key" env:"HMX_STORAGE_SESSION_KEY"`
	CookieKey    string `toml:"cookie_key" env:"HMX_STORAGE_COOKIE_KEY"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level" env:"HMX_LOG_LEVEL"`
	File  string `toml:"file" env:"HMX_LOG_FILE"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
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
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidConfig)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv applies a .env file (when present) and HMX_* environment overrides on top of config.
//
// Variables that are not set leave the TOML value untouched.
func LoadEnv(config *Config, files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return config.Validate()
}

// Validate checks required values and trims the base URL.
func (c *Config) Validate() error {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url is required", ErrInvalidConfig)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("%w: api.rate_limit must not be negative", ErrInvalidConfig)
	}
	if c.API.Burst <= 0 {
		c.API.Burst = 1
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path is required", ErrInvalidConfig)
	}
	if c.Storage.SessionKey == "" {
		c.Storage.SessionKey = "auth"
	}
	if c.Storage.CookieKey == "" {
		c.Storage.CookieKey = "cookies"
	}
	return nil
}
