package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API         APIConfig         `toml:"api"`
	Credentials CredentialsConfig `toml:"credentials"`
	Logging     LoggingConfig     `toml:"logging"`
	UI          UIConfig          `toml:"ui"`
	Server      ServerConfig      `toml:"server"`
}

// APIConfig points the client at the show tracker backend.
type APIConfig struct {
	BaseURL        string  `toml:"base_url"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit"`
}

// CredentialsConfig holds optional login credentials used by one-shot commands.
type CredentialsConfig struct {
	Email    string `toml:"email"`
	Password string `toml:"password"`
}

// LoggingConfig contains log level and the TUI log file.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// UIConfig contains terminal UI behavior toggles.
type UIConfig struct {
	RefetchOnFocus bool `toml:"refetch_on_focus"`
}

// ServerConfig contains settings for the development backend stub.
type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Email    string `toml:"email"`
	Password string `toml:"password"`
}

// Timeout returns the configured request timeout.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Addr returns host:port for the development server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the fields every command depends on.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api.base_url %q is not an absolute URL", ErrInvalidConfig, c.API.BaseURL)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("%w: api.rate_limit must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv overrides values from TVX_BASE_URL, TVX_EMAIL and TVX_PASSWORD when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TVX_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("TVX_EMAIL"); v != "" {
		c.Credentials.Email = v
	}
	if v := os.Getenv("TVX_PASSWORD"); v != "" {
		c.Credentials.Password = v
	}
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
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

	if err := os.WriteFile(path, exampleConf, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
