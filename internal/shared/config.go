package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// BaseURLEnv overrides [APIConfig.BaseURL] when set.
const BaseURLEnv = "MEMORU_API_BASE_URL"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	OIDC     OIDCConfig     `toml:"oidc"`
	Database DatabaseConfig `toml:"database"`
	Import   ImportConfig   `toml:"import"`
	Log      LogConfig      `toml:"log"`
}

// APIConfig contains flashcard API settings.
type APIConfig struct {
	BaseURL           string `toml:"base_url"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	MaxRefreshRetries int    `toml:"max_refresh_retries"`
}

// Timeout returns the transport timeout, or zero for none.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OIDCConfig contains identity provider settings.
//
// Either Issuer (discovery) or both AuthURL and TokenURL must be set.
type OIDCConfig struct {
	Issuer              string   `toml:"issuer"`
	ClientID            string   `toml:"client_id"`
	ClientSecret        string   `toml:"client_secret"`
	Scopes              []string `toml:"scopes"`
	AuthURL             string   `toml:"auth_url"`
	TokenURL            string   `toml:"token_url"`
	RedirectHost        string   `toml:"redirect_host"`
	RedirectPort        int      `toml:"redirect_port"`
	LoginTimeoutSeconds int      `toml:"login_timeout_seconds"`
}

// RedirectAddr returns the host:port the loopback callback server listens on.
func (c OIDCConfig) RedirectAddr() string {
	return fmt.Sprintf("%s:%d", c.RedirectHost, c.RedirectPort)
}

// RedirectURL returns the OAuth2 redirect URI registered with the identity provider.
func (c OIDCConfig) RedirectURL() string {
	return fmt.Sprintf("http://%s/callback", c.RedirectAddr())
}

// LoginTimeout returns how long an interactive login waits for the callback.
func (c OIDCConfig) LoginTimeout() time.Duration {
	if c.LoginTimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.LoginTimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ImportConfig contains bulk import settings.
type ImportConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("%w: api.base_url is required", ErrInvalidConfig)
	}
	if c.API.MaxRefreshRetries < 0 {
		return fmt.Errorf("%w: api.max_refresh_retries must not be negative", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.OIDC.ClientID) == "" {
		return fmt.Errorf("%w: oidc.client_id is required", ErrMissingCredentials)
	}
	if c.OIDC.Issuer == "" && (c.OIDC.AuthURL == "" || c.OIDC.TokenURL == "") {
		return fmt.Errorf("%w: oidc.issuer or both oidc.auth_url and oidc.token_url are required", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(BaseURLEnv)); v != "" {
		c.API.BaseURL = v
	}
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
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

// SaveConfig writes config to path as TOML.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
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
