package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./memoru.db" {
			t.Errorf("expected database path ./memoru.db, got %s", config.Database.Path)
		}

		if config.API.BaseURL != "http://localhost:8080/api" {
			t.Errorf("expected api base URL http://localhost:8080/api, got %s", config.API.BaseURL)
		}

		if config.API.MaxRefreshRetries != 1 {
			t.Errorf("expected max refresh retries 1, got %d", config.API.MaxRefreshRetries)
		}

		if config.OIDC.RedirectPort != 3000 {
			t.Errorf("expected redirect port 3000, got %d", config.OIDC.RedirectPort)
		}

		if config.Import.Workers != 4 {
			t.Errorf("expected 4 import workers, got %d", config.Import.Workers)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("expected default config to validate, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[api]
base_url = "https://memoru.example.com/api"

[oidc]
client_id = "test_client"
auth_url = "https://idp.example.com/auth"
token_url = "https://idp.example.com/token"
issuer = ""

[database]
path = "/custom/path.db"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://memoru.example.com/api" {
			t.Errorf("expected overridden base URL, got %s", config.API.BaseURL)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.OIDC.RedirectPort != 3000 {
			t.Errorf("expected default redirect port to survive partial file, got %d", config.OIDC.RedirectPort)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("expected explicit endpoints to validate, got %v", err)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("SaveConfig Round Trip", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.OIDC.ClientID = "saved-client"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.OIDC.ClientID != "saved-client" {
			t.Errorf("expected client_id saved-client, got %s", loaded.OIDC.ClientID)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			mutate  func(c *Config)
			wantErr error
		}{
			{
				name:    "missing base url",
				mutate:  func(c *Config) { c.API.BaseURL = " " },
				wantErr: ErrInvalidConfig,
			},
			{
				name:    "negative retries",
				mutate:  func(c *Config) { c.API.MaxRefreshRetries = -1 },
				wantErr: ErrInvalidConfig,
			},
			{
				name:    "missing client id",
				mutate:  func(c *Config) { c.OIDC.ClientID = "" },
				wantErr: ErrMissingCredentials,
			},
			{
				name: "no issuer and partial endpoints",
				mutate: func(c *Config) {
					c.OIDC.Issuer = ""
					c.OIDC.AuthURL = "https://idp.example.com/auth"
				},
				wantErr: ErrInvalidConfig,
			},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				if err := config.Validate(); !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			})
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(BaseURLEnv, "https://env.example.com/api")
		config := DefaultConfig()
		config.ApplyEnv()

		if config.API.BaseURL != "https://env.example.com/api" {
			t.Errorf("expected env base URL, got %s", config.API.BaseURL)
		}
	})

	t.Run("Derived Values", func(t *testing.T) {
		config := DefaultConfig()

		if got := config.OIDC.RedirectURL(); got != "http://127.0.0.1:3000/callback" {
			t.Errorf("unexpected redirect URL %s", got)
		}
		if got := config.OIDC.LoginTimeout(); got != 2*time.Minute {
			t.Errorf("expected 2m login timeout, got %v", got)
		}
		if got := config.API.Timeout(); got != 30*time.Second {
			t.Errorf("expected 30s api timeout, got %v", got)
		}

		config.API.TimeoutSeconds = 0
		if got := config.API.Timeout(); got != 0 {
			t.Errorf("expected no timeout, got %v", got)
		}
	})
}
