package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "http://localhost:8080" {
			t.Errorf("expected base URL http://localhost:8080, got %s", config.API.BaseURL)
		}
		if config.Storage.Path != "./hmx.db" {
			t.Errorf("expected storage path ./hmx.db, got %s", config.Storage.Path)
		}
		if config.Storage.SessionKey != "auth" {
			t.Errorf("expected session key auth, got %s", config.Storage.SessionKey)
		}
		if config.Log.Level != "info" {
			t.Errorf("expected log level info, got %s", config.Log.Level)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Storage.Path != DefaultConfig().Storage.Path {
			t.Errorf("created config storage path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[api]
base_url = "https://hr.example.com/"
rate_limit = 2.5

[storage]
path = "/custom/hmx.db"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://hr.example.com/" {
			t.Errorf("expected base URL https://hr.example.com/, got %s", config.API.BaseURL)
		}
		if config.API.RateLimit != 2.5 {
			t.Errorf("expected rate limit 2.5, got %v", config.API.RateLimit)
		}
		if config.Storage.Path != "/custom/hmx.db" {
			t.Errorf("expected storage path /custom/hmx.db, got %s", config.Storage.Path)
		}
		if config.Storage.CookieKey != "cookies" {
			t.Errorf("unset keys should keep defaults, got cookie key %q", config.Storage.CookieKey)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("Environment Overrides", func(t *testing.T) {
		t.Setenv("HMX_API_BASE_URL", "http://api.internal:9000/")
		t.Setenv("HMX_LOG_LEVEL", "debug")

		config := DefaultConfig()
		if err := LoadEnv(config, filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("LoadEnv() error = %v", err)
		}

		if config.API.BaseURL != "http://api.internal:9000" {
			t.Errorf("expected trimmed env base URL, got %s", config.API.BaseURL)
		}
		if config.Log.Level != "debug" {
			t.Errorf("expected log level debug, got %s", config.Log.Level)
		}
		if config.Storage.Path != "./hmx.db" {
			t.Errorf("unset env var should keep TOML value, got %s", config.Storage.Path)
		}
	})

	t.Run("Dotenv File", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("HMX_STORAGE_PATH=/tmp/from-dotenv.db\n"), 0644); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("HMX_STORAGE_PATH") })

		config := DefaultConfig()
		if err := LoadEnv(config, envPath); err != nil {
			t.Fatalf("LoadEnv() error = %v", err)
		}

		if config.Storage.Path != "/tmp/from-dotenv.db" {
			t.Errorf("expected storage path from .env, got %s", config.Storage.Path)
		}
	})

	t.Run("Invalid Value", func(t *testing.T) {
		t.Setenv("HMX_API_RATE_LIMIT", "fast")

		err := LoadEnv(DefaultConfig(), filepath.Join(t.TempDir(), "missing.env"))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tc := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "empty base url", mutate: func(c *Config) { c.API.BaseURL = " " }, wantErr: true},
		{name: "negative rate limit", mutate: func(c *Config) { c.API.RateLimit = -1 }, wantErr: true},
		{name: "empty storage path", mutate: func(c *Config) { c.Storage.Path = "" }, wantErr: true},
		{name: "zero burst is corrected", mutate: func(c *Config) { c.API.Burst = 0 }},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && config.API.Burst < 1 {
				t.Errorf("expected burst >= 1, got %d", config.API.Burst)
			}
		})
	}
}
